// Package postgres stores tickets in PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ticketModel is the tickets table. Seq orders tickets by creation; ID is
// the opaque identifier handed to users.
type ticketModel struct {
	Seq       uint64                            `gorm:"primaryKey;autoIncrement"`
	ID        string                            `gorm:"size:36;uniqueIndex;not null"`
	UserID    string                            `gorm:"size:128;index;not null"`
	Fields    datatypes.JSONType[domain.Record] `gorm:"not null"`
	Status    string                            `gorm:"size:16;not null"`
	CreatedAt time.Time                         `gorm:"not null"`
}

func (ticketModel) TableName() string { return "tickets" }

func (m ticketModel) toDomain() domain.Ticket {
	return domain.Ticket{
		ID:        m.ID,
		UserID:    m.UserID,
		Fields:    m.Fields.Data(),
		Status:    domain.TicketStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

// TicketStore implements ports.TicketStorage on PostgreSQL.
type TicketStore struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the schema.
func Open(dsn string) (*TicketStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewTicketStore(db)
}

// NewTicketStore uses an existing gorm handle and migrates the schema.
func NewTicketStore(db *gorm.DB) (*TicketStore, error) {
	if err := db.AutoMigrate(&ticketModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tickets: %w", err)
	}
	return &TicketStore{db: db}, nil
}

func (s *TicketStore) CreateTicket(ctx context.Context, userID string, fields domain.Record) (string, error) {
	if fields == nil {
		fields = domain.Record{}
	}
	m := ticketModel{
		ID:        uuid.NewString(),
		UserID:    userID,
		Fields:    datatypes.NewJSONType(fields.Clone()),
		Status:    string(domain.TicketOpen),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return "", err
	}
	return m.ID, nil
}

func (s *TicketStore) ListTickets(ctx context.Context, userID string) ([]domain.Ticket, error) {
	var rows []ticketModel
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("seq").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	tickets := make([]domain.Ticket, len(rows))
	for i, r := range rows {
		tickets[i] = r.toDomain()
	}
	return tickets, nil
}

func (s *TicketStore) GetTicket(ctx context.Context, ticketID string) (domain.Ticket, error) {
	var m ticketModel
	err := s.db.WithContext(ctx).Where("id = ?", ticketID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	if err != nil {
		return domain.Ticket{}, err
	}
	return m.toDomain(), nil
}

// DeleteTicket deletes in one statement; ownership is part of the predicate.
func (s *TicketStore) DeleteTicket(ctx context.Context, userID, ticketID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", ticketID, userID).
		Delete(&ticketModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *TicketStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
