package tags

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/biffcrash1/image-viewer/database/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.SetupJoinTable(&models.Image{}, "Tags", &models.ImageTag{}))
	require.NoError(t, db.SetupJoinTable(&models.Tag{}, "Images", &models.ImageTag{}))
	err = db.AutoMigrate(&models.Image{}, &models.Tag{})
	require.NoError(t, err)

	return db
}

func TestGetOrCreateByNames(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	first, err := repo.GetOrCreateByNames([]string{"cat", "dog"})
	require.NoError(t, err)
	require.Len(t, first, 2)

	// Existing names resolve to the same records.
	second, err := repo.GetOrCreateByNames([]string{"dog", "bird"})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[1].ID, second[0].ID)

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestListUsedAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	cat := &models.Tag{Name: "cat"}
	dog := &models.Tag{Name: "dog"}
	idle := &models.Tag{Name: "idle"}
	require.NoError(t, db.Create(&[]*models.Tag{cat, dog, idle}).Error)

	require.NoError(t, db.Create(&models.Image{FileName: "a.jpg", RelativePath: "a.jpg", Tags: []*models.Tag{cat, dog}}).Error)
	require.NoError(t, db.Create(&models.Image{FileName: "b.jpg", RelativePath: "b.jpg", Tags: []*models.Tag{cat}}).Error)

	usages, err := repo.ListUsed()
	require.NoError(t, err)
	require.Len(t, usages, 2)
	assert.Equal(t, "cat", usages[0].Name)
	assert.Equal(t, int64(2), usages[0].Count)
	assert.Equal(t, "dog", usages[1].Name)
	assert.Equal(t, int64(1), usages[1].Count)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestPruneUnused(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	cat := &models.Tag{Name: "cat"}
	idle := &models.Tag{Name: "idle"}
	require.NoError(t, db.Create(&[]*models.Tag{cat, idle}).Error)
	require.NoError(t, db.Create(&models.Image{FileName: "a.jpg", RelativePath: "a.jpg", Tags: []*models.Tag{cat}}).Error)

	pruned, err := repo.PruneUnused()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	var names []string
	require.NoError(t, db.Model(&models.Tag{}).Pluck("name", &names).Error)
	assert.Equal(t, []string{"cat"}, names)
}
