package policy_test

import (
	"fmt"
	"sync"
	"testing"

	"lendit/internal/audit"
	"lendit/internal/models"
	"lendit/internal/policy"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Booking{},
		&models.PolicyDocument{},
		&models.AuditLog{},
	))
	return db
}

func TestPublishSequenceIsGapless(t *testing.T) {
	db := testDB(t)

	const n = 5
	for i := 1; i <= n; i++ {
		doc, err := policy.Publish(db, policy.CanonicalSlug,
			"Insurance and damage policy",
			fmt.Sprintf("terms revision %d", i),
			audit.Actor{}, audit.RequestMeta{})
		require.NoError(t, err)
		require.Equal(t, i, doc.Version)
	}

	active, err := policy.Active(db, policy.CanonicalSlug)
	require.NoError(t, err)
	require.Equal(t, n, active.Version)
}

func TestHistoricalContentSurvivesLaterPublishes(t *testing.T) {
	db := testDB(t)

	for i := 1; i <= 4; i++ {
		_, err := policy.Publish(db, policy.CanonicalSlug,
			"Insurance and damage policy",
			fmt.Sprintf("terms revision %d", i),
			audit.Actor{}, audit.RequestMeta{})
		require.NoError(t, err)
	}

	for i := 1; i <= 4; i++ {
		doc, err := policy.Version(db, policy.CanonicalSlug, i)
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("terms revision %d", i), doc.Content)
		require.Equal(t, i, doc.Version)
	}
}

func TestActiveFailsWithoutPublishedPolicy(t *testing.T) {
	db := testDB(t)

	_, err := policy.Active(db, policy.CanonicalSlug)
	require.ErrorIs(t, err, policy.ErrNotFound)

	_, err = policy.ActiveVersion(db, policy.CanonicalSlug)
	require.ErrorIs(t, err, policy.ErrNotFound)

	_, err = policy.Version(db, policy.CanonicalSlug, 1)
	require.ErrorIs(t, err, policy.ErrNotFound)
}

func TestActivePicksHighestVersionNumber(t *testing.T) {
	db := testDB(t)

	// rows inserted out of order; version number alone decides "current"
	docs := []models.PolicyDocument{
		{Slug: policy.CanonicalSlug, Version: 3, Title: "t", Content: "v3", IsPublished: true},
		{Slug: policy.CanonicalSlug, Version: 1, Title: "t", Content: "v1", IsPublished: true},
		{Slug: policy.CanonicalSlug, Version: 2, Title: "t", Content: "v2", IsPublished: true},
	}
	for i := range docs {
		require.NoError(t, db.Create(&docs[i]).Error)
	}

	active, err := policy.Active(db, policy.CanonicalSlug)
	require.NoError(t, err)
	require.Equal(t, 3, active.Version)
	require.Equal(t, "v3", active.Content)
}

func TestConcurrentPublishesYieldUniqueGaplessVersions(t *testing.T) {
	db := testDB(t)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = policy.Publish(db, policy.CanonicalSlug,
				"Insurance and damage policy", fmt.Sprintf("concurrent revision %d", i),
				audit.Actor{}, audit.RequestMeta{})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	var versions []int
	require.NoError(t, db.Model(&models.PolicyDocument{}).
		Where("slug = ?", policy.CanonicalSlug).
		Order("version asc").
		Pluck("version", &versions).Error)

	require.Len(t, versions, n)
	for i, v := range versions {
		require.Equal(t, i+1, v, "versions must be gapless with no duplicates")
	}
}

func TestPublishEmitsOneAuditEntry(t *testing.T) {
	db := testDB(t)

	_, err := policy.Publish(db, policy.CanonicalSlug, "t", "v1",
		audit.Actor{}, audit.RequestMeta{})
	require.NoError(t, err)
	_, err = policy.Publish(db, policy.CanonicalSlug, "t", "v2",
		audit.Actor{}, audit.RequestMeta{})
	require.NoError(t, err)

	entries, total, err := audit.List(db, audit.Filter{
		Action:     models.ActionPolicyUpdated,
		TargetType: models.TargetPolicy,
		TargetID:   policy.CanonicalSlug,
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	// newest first: the v2 publish carries previous=1, new=2
	require.JSONEq(t, `{"version": 1}`, string(entries[0].PreviousValue))
	require.JSONEq(t, `{"version": 2}`, string(entries[0].NewValue))
	require.JSONEq(t, `{"version": 0}`, string(entries[1].PreviousValue))
	require.JSONEq(t, `{"version": 1}`, string(entries[1].NewValue))
}

func TestPublishValidatesInput(t *testing.T) {
	db := testDB(t)

	_, err := policy.Publish(db, "", "t", "content", audit.Actor{}, audit.RequestMeta{})
	require.Error(t, err)

	_, err = policy.Publish(db, policy.CanonicalSlug, "t", "", audit.Actor{}, audit.RequestMeta{})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.PolicyDocument{}).Count(&count).Error)
	require.Zero(t, count, "a failed publish must not create any document")
}

func intPtr(v int) *int { return &v }

func TestIsOutdated(t *testing.T) {
	db := testDB(t)

	for i := 1; i <= 4; i++ {
		_, err := policy.Publish(db, policy.CanonicalSlug, "t",
			fmt.Sprintf("v%d", i), audit.Actor{}, audit.RequestMeta{})
		require.NoError(t, err)
	}

	cases := []struct {
		name     string
		bound    *int
		outdated bool
		anomaly  bool
	}{
		{"behind the live version", intPtr(2), true, false},
		{"equal to the live version", intPtr(4), false, false},
		{"legacy booking without a bound version", nil, false, false},
		{"ahead of the live version", intPtr(9), false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := models.Booking{PlatformPolicyVersionAccepted: tc.bound}
			outdated, anomaly, err := policy.IsOutdated(db, &b)
			require.NoError(t, err)
			require.Equal(t, tc.outdated, outdated)
			require.Equal(t, tc.anomaly, anomaly)
		})
	}
}

func TestIsOutdatedIsReadOnly(t *testing.T) {
	db := testDB(t)

	_, err := policy.Publish(db, policy.CanonicalSlug, "t", "v1",
		audit.Actor{}, audit.RequestMeta{})
	require.NoError(t, err)

	var before int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&before).Error)

	b := models.Booking{PlatformPolicyVersionAccepted: intPtr(1)}
	_, _, err = policy.IsOutdated(db, &b)
	require.NoError(t, err)

	var after int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&after).Error)
	require.Equal(t, before, after, "read-only checks are not audited")
}
