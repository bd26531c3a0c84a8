package helpers

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/repository"
	"github.com/phonedir/contact-reports/pkg/pg"
	"github.com/phonedir/contact-reports/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.ReportEntity{},
		&repository.ReportDetailEntity{},
		&repository.OutboxEntity{},
		&repository.PersonEntity{},
		&repository.ContactInfoEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Unique connection name per test, the adapter caches connections globally.
	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestPerson(t *testing.T, db *pg.DB, firstName, lastName string) *repository.PersonEntity {
	ctx := context.Background()
	person := &repository.PersonEntity{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  lastName,
	}
	err := db.Write(ctx).Create(person).Error
	require.NoError(t, err)
	return person
}

func CreateTestContactInfo(t *testing.T, db *pg.DB, personID uuid.UUID, kind, content string) *repository.ContactInfoEntity {
	ctx := context.Background()
	info := &repository.ContactInfoEntity{
		ID:       uuid.New(),
		PersonID: personID,
		Kind:     kind,
		Content:  content,
	}
	err := db.Write(ctx).Create(info).Error
	require.NoError(t, err)
	return info
}

func CreateTestReport(t *testing.T, db *pg.DB, location, status string, requestedAt, deadlineAt time.Time) *repository.ReportEntity {
	ctx := context.Background()
	report := &repository.ReportEntity{
		ID:          uuid.New(),
		Location:    location,
		Status:      status,
		RequestedAt: requestedAt,
		DeadlineAt:  deadlineAt,
	}
	err := db.Write(ctx).Create(report).Error
	require.NoError(t, err)
	return report
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
