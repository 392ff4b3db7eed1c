package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/startuphub/backend/internal/config"
	"github.com/startuphub/backend/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	cfg := config.Load()

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to Database")

	// Common password for all users
	password := "password123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	log.Println("🌱 Seeding 10 users...")

	var users []model.User
	for i := 1; i <= 10; i++ {
		username := fmt.Sprintf("user%d", i)

		var existing model.User
		if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
			users = append(users, existing)
			continue
		}

		user := model.User{
			ID:       uuid.New(),
			Username: username,
			Password: string(hashedPassword),
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("❌ Failed to create user %s: %v", username, err)
			continue
		}
		users = append(users, user)
		log.Printf("✅ Created user: %s | Pass: %s", username, password)
	}

	if len(users) >= 2 {
		seedDirectRoom(db, users[0], users[1])
	}
	if len(users) >= 3 {
		seedGroupRoom(db, users[0], users[1:3])
	}

	log.Println("🎉 Seeding completed!")
}

func seedDirectRoom(db *gorm.DB, a, b model.User) {
	name := model.DirectRoomName(a.Username, b.Username)

	var count int64
	db.Model(&model.Room{}).Where("name = ? AND room_type = ?", name, model.RoomTypeDirect).Count(&count)
	if count > 0 {
		return
	}

	room := model.Room{
		ID:              uuid.New(),
		Name:            name,
		RoomType:        model.RoomTypeDirect,
		IsActive:        true,
		MaxParticipants: 2,
	}
	if err := db.Create(&room).Error; err != nil {
		log.Printf("❌ Failed to create direct room: %v", err)
		return
	}

	now := time.Now()
	for _, u := range []model.User{a, b} {
		db.Create(&model.Participant{
			UserID:   u.ID,
			RoomID:   room.ID,
			JoinedAt: now,
		})
	}

	log.Printf("✅ Created demo direct room: %q", name)
}

func seedGroupRoom(db *gorm.DB, admin model.User, members []model.User) {
	var count int64
	db.Model(&model.Room{}).Where("name = ?", "General").Count(&count)
	if count > 0 {
		return
	}

	room := model.Room{
		ID:              uuid.New(),
		Name:            "General",
		RoomType:        model.RoomTypeGroup,
		IsActive:        true,
		MaxParticipants: 10,
	}
	if err := db.Create(&room).Error; err != nil {
		log.Printf("❌ Failed to create group room: %v", err)
		return
	}

	now := time.Now()
	db.Create(&model.Participant{
		UserID:   admin.ID,
		RoomID:   room.ID,
		JoinedAt: now,
		IsAdmin:  true,
	})
	for _, m := range members {
		db.Create(&model.Participant{
			UserID:   m.ID,
			RoomID:   room.ID,
			JoinedAt: now,
		})
	}

	welcome := "Welcome to the General room! 🚀"
	db.Create(&model.Message{
		ID:          uuid.New(),
		RoomID:      room.ID,
		SenderID:    admin.ID,
		Content:     &welcome,
		MessageType: model.MessageTypeText,
		SentAt:      now,
	})

	log.Printf("✅ Created demo group room: 'General' with %d members", len(members)+1)
}
