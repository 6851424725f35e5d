package feed

import (
	"sync"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"

	"github.com/tourops/backoffice/pkg/rules"
)

type dbNotification struct {
	ID        string `gorm:"primary_key"`
	RuleID    string
	RuleName  string
	Trigger   string
	Severity  string
	Title     string
	Body      string
	ActionURL string
	EntityID  string
	Read      bool
	Created   time.Time
}

func (d *dbNotification) TableName() string {
	return "notifications"
}

type postgresStore struct {
	connectionString string
}

var (
	once sync.Once
	inst *postgresStore
)

func NewPostgresStore(connectionString string) (Store, error) {
	var err error
	// singleton
	once.Do(func() {
		inst = &postgresStore{connectionString}
		err = inst.init()
	})
	return inst, err
}

func (s *postgresStore) open() (*gorm.DB, error) {
	return gorm.Open("postgres", s.connectionString)
}

func (s *postgresStore) init() error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	db.AutoMigrate(&dbNotification{})
	return db.Error
}

func (s *postgresStore) Name() string {
	return "postgres"
}

func (s *postgresStore) Append(n *rules.Notification) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	db.Create(&dbNotification{
		ID:        n.ID,
		RuleID:    n.RuleID,
		RuleName:  n.RuleName,
		Trigger:   n.Trigger,
		Severity:  n.Severity,
		Title:     n.Title,
		Body:      n.Body,
		ActionURL: n.ActionURL,
		EntityID:  n.EntityID,
		Read:      n.Read,
		Created:   n.Created,
	})
	return db.Error
}

func (s *postgresStore) Recent(limit int) ([]*rules.Notification, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := db.Order("created DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []dbNotification
	query.Find(&rows)
	if db.Error != nil {
		return nil, db.Error
	}

	res := make([]*rules.Notification, 0, len(rows))
	for _, row := range rows {
		res = append(res, &rules.Notification{
			ID:        row.ID,
			RuleID:    row.RuleID,
			RuleName:  row.RuleName,
			Trigger:   row.Trigger,
			Severity:  row.Severity,
			Title:     row.Title,
			Body:      row.Body,
			ActionURL: row.ActionURL,
			EntityID:  row.EntityID,
			Read:      row.Read,
			Created:   row.Created,
		})
	}
	return res, nil
}

func (s *postgresStore) MarkRead(id string) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	db.Model(&dbNotification{}).Where("id = ?", id).Update("read", true)
	return db.Error
}

func (s *postgresStore) Close() {
	// no op
}
