// Package gormstore is the PostgreSQL-backed store adapter. It owns the
// connection lifecycle: callers construct it at startup with Open and
// release it at shutdown with Close.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/psgpraveen/PolicyPilot/internal/config"
	"github.com/psgpraveen/PolicyPilot/internal/store"
)

type Store struct {
	db *gorm.DB
}

func Open(cfg config.DatabaseConfig) (*Store, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host,
		cfg.Username,
		cfg.Password,
		cfg.Name,
		cfg.Port,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.AutoMigrate(&userRecord{}, &clientRecord{}, &categoryRecord{}, &policyRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type userRecord struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

type clientRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"not null"`
	Phone     string `gorm:"not null"`
	OwnerID   string `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (clientRecord) TableName() string { return "clients" }

type categoryRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	OwnerID   string `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (categoryRecord) TableName() string { return "categories" }

// policyRecord embeds the attachment inline; an empty content type means
// the policy has no attachment.
type policyRecord struct {
	ID                    string `gorm:"primaryKey"`
	ClientID              string `gorm:"index;not null"`
	CategoryID            string `gorm:"index;not null"`
	PolicyName            string `gorm:"not null"`
	IssueDate             time.Time
	ExpiryDate            time.Time
	Amount                float64
	AttachmentData        string `gorm:"type:text"`
	AttachmentContentType string
	AttachmentFilename    string
	AttachmentSize        int64
	OwnerID               string `gorm:"index;not null"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (policyRecord) TableName() string { return "policies" }

func (s *Store) CreateUser(ctx context.Context, user *store.User) error {
	record := userRecord{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	err := s.db.WithContext(ctx).Create(&record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrDuplicateEmail
	}
	return err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*store.User, error) {
	var record userRecord
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&record).Error
	if err != nil {
		return nil, translate(err)
	}
	return record.toUser(), nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*store.User, error) {
	var record userRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, translate(err)
	}
	return record.toUser(), nil
}

func (r *userRecord) toUser() *store.User {
	return &store.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

func (s *Store) CreateClient(ctx context.Context, client *store.Client) error {
	record := clientRecord(*client)
	return s.db.WithContext(ctx).Create(&record).Error
}

func (s *Store) ClientsByOwner(ctx context.Context, ownerID string) ([]store.Client, error) {
	var records []clientRecord
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&records).Error; err != nil {
		return nil, err
	}
	clients := make([]store.Client, len(records))
	for i, r := range records {
		clients[i] = store.Client(r)
	}
	return clients, nil
}

func (s *Store) ClientByID(ctx context.Context, id string) (*store.Client, error) {
	var record clientRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, translate(err)
	}
	client := store.Client(record)
	return &client, nil
}

func (s *Store) UpdateClient(ctx context.Context, client *store.Client) (bool, error) {
	record := clientRecord(*client)
	tx := s.db.WithContext(ctx).Model(&clientRecord{}).Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"name":       record.Name,
			"email":      record.Email,
			"phone":      record.Phone,
			"updated_at": record.UpdatedAt,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (s *Store) DeleteClient(ctx context.Context, id string) (bool, error) {
	tx := s.db.WithContext(ctx).Where("id = ?", id).Delete(&clientRecord{})
	return tx.RowsAffected > 0, tx.Error
}

func (s *Store) CreateCategory(ctx context.Context, category *store.Category) error {
	record := categoryRecord(*category)
	return s.db.WithContext(ctx).Create(&record).Error
}

func (s *Store) CategoriesByOwner(ctx context.Context, ownerID string) ([]store.Category, error) {
	var records []categoryRecord
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&records).Error; err != nil {
		return nil, err
	}
	categories := make([]store.Category, len(records))
	for i, r := range records {
		categories[i] = store.Category(r)
	}
	return categories, nil
}

func (s *Store) CategoryByID(ctx context.Context, id string) (*store.Category, error) {
	var record categoryRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, translate(err)
	}
	category := store.Category(record)
	return &category, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category *store.Category) (bool, error) {
	tx := s.db.WithContext(ctx).Model(&categoryRecord{}).Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":       category.Name,
			"updated_at": category.UpdatedAt,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (s *Store) DeleteCategory(ctx context.Context, id string) (bool, error) {
	tx := s.db.WithContext(ctx).Where("id = ?", id).Delete(&categoryRecord{})
	return tx.RowsAffected > 0, tx.Error
}

func (s *Store) CreatePolicy(ctx context.Context, policy *store.Policy) error {
	record := toPolicyRecord(policy)
	return s.db.WithContext(ctx).Create(&record).Error
}

func (s *Store) PoliciesByOwner(ctx context.Context, ownerID string) ([]store.Policy, error) {
	var records []policyRecord
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&records).Error; err != nil {
		return nil, err
	}
	policies := make([]store.Policy, len(records))
	for i := range records {
		policies[i] = *records[i].toPolicy()
	}
	return policies, nil
}

func (s *Store) PolicyByID(ctx context.Context, id string) (*store.Policy, error) {
	var record policyRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, translate(err)
	}
	return record.toPolicy(), nil
}

func (s *Store) UpdatePolicy(ctx context.Context, policy *store.Policy) (bool, error) {
	record := toPolicyRecord(policy)
	tx := s.db.WithContext(ctx).Model(&policyRecord{}).Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"client_id":               record.ClientID,
			"category_id":             record.CategoryID,
			"policy_name":             record.PolicyName,
			"issue_date":              record.IssueDate,
			"expiry_date":             record.ExpiryDate,
			"amount":                  record.Amount,
			"attachment_data":         record.AttachmentData,
			"attachment_content_type": record.AttachmentContentType,
			"attachment_filename":     record.AttachmentFilename,
			"attachment_size":         record.AttachmentSize,
			"updated_at":              record.UpdatedAt,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (s *Store) DeletePolicy(ctx context.Context, id string) (bool, error) {
	tx := s.db.WithContext(ctx).Where("id = ?", id).Delete(&policyRecord{})
	return tx.RowsAffected > 0, tx.Error
}

func toPolicyRecord(p *store.Policy) policyRecord {
	record := policyRecord{
		ID:         p.ID,
		ClientID:   p.ClientID,
		CategoryID: p.CategoryID,
		PolicyName: p.PolicyName,
		IssueDate:  p.IssueDate,
		ExpiryDate: p.ExpiryDate,
		Amount:     p.Amount,
		OwnerID:    p.OwnerID,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.Attachment != nil {
		record.AttachmentData = p.Attachment.Data
		record.AttachmentContentType = p.Attachment.ContentType
		record.AttachmentFilename = p.Attachment.Filename
		record.AttachmentSize = p.Attachment.Size
	}
	return record
}

func (r *policyRecord) toPolicy() *store.Policy {
	policy := &store.Policy{
		ID:         r.ID,
		ClientID:   r.ClientID,
		CategoryID: r.CategoryID,
		PolicyName: r.PolicyName,
		IssueDate:  r.IssueDate,
		ExpiryDate: r.ExpiryDate,
		Amount:     r.Amount,
		OwnerID:    r.OwnerID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.AttachmentContentType != "" {
		policy.Attachment = &store.Attachment{
			Data:        r.AttachmentData,
			ContentType: r.AttachmentContentType,
			Filename:    r.AttachmentFilename,
			Size:        r.AttachmentSize,
		}
	}
	return policy
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}
