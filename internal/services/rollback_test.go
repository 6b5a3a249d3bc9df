package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return NewStore(db, WithLogger(quietLogger())), mock
}

func TestSaveDietPlanRollsBackOnStorageFailure(t *testing.T) {
	s, mock := setupMockStore(t)
	coach := policy.Actor{ID: "7b0c1f4e-8f0e-4d5c-9a51-3f7d2c1e9a10", Role: policy.RoleCoach}
	diskFull := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `diet_plans`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `meals`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `meals`")).
		WillReturnError(diskFull)
	mock.ExpectRollback()

	_, err := s.SaveDietPlan(context.Background(), coach, DietPlanInput{Name: "Cut", AutoCalculate: derivedMode},
		[]MealInput{manualMeal("Breakfast", 300), manualMeal("Lunch", 500)})

	var pe *types.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "save diet plan", pe.Op)
	assert.ErrorIs(t, err, diskFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDietPlanRollsBackOnStorageFailure(t *testing.T) {
	s, mock := setupMockStore(t)
	coach := policy.Actor{ID: "7b0c1f4e-8f0e-4d5c-9a51-3f7d2c1e9a10", Role: policy.RoleCoach}
	lost := errors.New("connection lost")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `diet_plans`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_system", "created_by"}).
			AddRow(5, "Cut", false, coach.ID))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id` FROM `meals`")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11).AddRow(12))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `meal_food_items`")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `meals`")).
		WillReturnError(lost)
	mock.ExpectRollback()

	err := s.DeleteDietPlan(context.Background(), coach, 5)

	var pe *types.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, lost)
	assert.NoError(t, mock.ExpectationsWereMet())
}
