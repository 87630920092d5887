package images

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

func TestJoinTableIndexes(t *testing.T) {
	db := setupTestDB(t)

	var names []string
	err := db.Raw("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'image_tags'").Scan(&names).Error
	require.NoError(t, err)
	assert.Contains(t, names, "idx_image_tags_image_id")
	assert.Contains(t, names, "idx_image_tags_tag_id")
}

// seedCatalog inserts images with tags:
//
//	a.jpg  rating 5  [cat, cute]
//	b.jpg  rating 8  [dog]
//	c.jpg  rating 0  [cat, dog]
//	d.jpg  rating 3  []
func seedCatalog(t *testing.T, db *gorm.DB) map[string]*models.Image {
	cat := &models.Tag{Name: "cat"}
	dog := &models.Tag{Name: "dog"}
	cute := &models.Tag{Name: "cute"}
	require.NoError(t, db.Create(&[]*models.Tag{cat, dog, cute}).Error)

	byName := map[string]*models.Image{
		"a.jpg": {FileName: "a.jpg", RelativePath: "a.jpg", FileSize: 100, Rating: 5, Tags: []*models.Tag{cat, cute}},
		"b.jpg": {FileName: "b.jpg", RelativePath: "sub/b.jpg", FileSize: 200, Rating: 8, Tags: []*models.Tag{dog}},
		"c.jpg": {FileName: "c.jpg", RelativePath: "c.jpg", FileSize: 300, Rating: 0, Tags: []*models.Tag{cat, dog}},
		"d.jpg": {FileName: "d.jpg", RelativePath: "d.jpg", FileSize: 400, Rating: 3},
	}
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"} {
		require.NoError(t, db.Create(byName[name]).Error)
	}
	return byName
}

func fileNames(images []*models.Image) []string {
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.FileName
	}
	return names
}

func TestListNoFilter(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	result, total, err := repo.List(ListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}, fileNames(result))
}

func TestListAnyTags(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	result, total, err := repo.List(ListFilter{AnyTags: []string{"cat", "dog"}, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, fileNames(result))
}

func TestListAllTags(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	result, total, err := repo.List(ListFilter{AllTags: []string{"cat", "dog"}, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []string{"c.jpg"}, fileNames(result))
}

func TestListIncludeGroupsAreORCombined(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	// cute alone matches a.jpg; cat+dog matches c.jpg; either passes.
	result, total, err := repo.List(ListFilter{
		AnyTags:  []string{"cute"},
		AllTags:  []string{"cat", "dog"},
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, fileNames(result))
}

func TestListExcludeWinsOverInclude(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	// c.jpg carries cat but also dog, so the exclusion removes it.
	result, total, err := repo.List(ListFilter{
		AnyTags:     []string{"cat"},
		ExcludeTags: []string{"dog"},
		Page:        1,
		PageSize:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []string{"a.jpg"}, fileNames(result))
}

func TestListRatingRange(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	min, max := 3, 5
	result, total, err := repo.List(ListFilter{MinRating: &min, MaxRating: &max, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"a.jpg", "d.jpg"}, fileNames(result))
}

func TestListSearchAndSort(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	result, total, err := repo.List(ListFilter{Search: ".jpg", Sort: SortNameDesc, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, []string{"d.jpg", "c.jpg"}, fileNames(result))

	result, _, err = repo.List(ListFilter{Search: ".jpg", Sort: SortNameDesc, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg", "a.jpg"}, fileNames(result))
}

func TestListPreloadsTags(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	result, _, err := repo.List(ListFilter{AnyTags: []string{"cute"}, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Len(t, result[0].Tags, 2)
}

func TestDeleteByRelativePathsClearsJoinRows(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	removed, err := repo.DeleteByRelativePaths([]string{"c.jpg", "missing.jpg"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var joinCount int64
	require.NoError(t, db.Table("image_tags").Count(&joinCount).Error)
	// a.jpg keeps 2 links, b.jpg keeps 1, c.jpg's 2 are gone.
	assert.Equal(t, int64(3), joinCount)

	paths, err := repo.ListRelativePaths()
	require.NoError(t, err)
	assert.NotContains(t, paths, "c.jpg")
}

func TestSetRating(t *testing.T) {
	db := setupTestDB(t)
	seeded := seedCatalog(t, db)
	repo := NewRepository(db)

	updated, err := repo.SetRating([]uint{seeded["a.jpg"].ID, seeded["d.jpg"].ID}, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	image, err := repo.GetByID(seeded["a.jpg"].ID)
	require.NoError(t, err)
	assert.Equal(t, 9, image.Rating)

	_, err = repo.SetRating([]uint{seeded["a.jpg"].ID}, 11)
	assert.Error(t, err)
	_, err = repo.SetRating([]uint{seeded["a.jpg"].ID}, -1)
	assert.Error(t, err)
}

func TestAddAndRemoveTags(t *testing.T) {
	db := setupTestDB(t)
	seeded := seedCatalog(t, db)
	repo := NewRepository(db)

	var fluffy models.Tag
	require.NoError(t, db.Create(&models.Tag{Name: "fluffy"}).Error)
	require.NoError(t, db.Where("name = ?", "fluffy").First(&fluffy).Error)

	ids := []uint{seeded["b.jpg"].ID, seeded["d.jpg"].ID}
	require.NoError(t, repo.AddTags(ids, []*models.Tag{&fluffy}))

	image, err := repo.GetByID(seeded["d.jpg"].ID)
	require.NoError(t, err)
	require.Len(t, image.Tags, 1)
	assert.Equal(t, "fluffy", image.Tags[0].Name)

	require.NoError(t, repo.RemoveTagsByName(ids, []string{"fluffy"}))
	image, err = repo.GetByID(seeded["d.jpg"].ID)
	require.NoError(t, err)
	assert.Empty(t, image.Tags)
}

func TestCountAndTotalFileSize(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	total, err := repo.TotalFileSize()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), total)
}

func TestUpsertByRelativePath(t *testing.T) {
	db := setupTestDB(t)
	seeded := seedCatalog(t, db)
	repo := NewRepository(db)

	// Update path: file metadata changes, rating and tags survive.
	require.NoError(t, repo.UpsertByRelativePath(&models.Image{
		FileName:     "a.jpg",
		RelativePath: "a.jpg",
		FileSize:     150,
		Width:        640,
		Height:       480,
	}))

	image, err := repo.GetByID(seeded["a.jpg"].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), image.FileSize)
	assert.Equal(t, 640, image.Width)
	assert.Equal(t, 5, image.Rating)
	assert.Len(t, image.Tags, 2)

	// Insert path for an unknown relative path.
	require.NoError(t, repo.UpsertByRelativePath(&models.Image{
		FileName:     "e.jpg",
		RelativePath: "e.jpg",
		FileSize:     500,
	}))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestGetByRelativePath(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewRepository(db)

	image, err := repo.GetByRelativePath("sub/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "b.jpg", image.FileName)

	_, err = repo.GetByRelativePath("nope.jpg")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
