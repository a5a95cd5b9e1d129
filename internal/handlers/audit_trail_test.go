package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"lendit/internal/audit"
	"lendit/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestListingStatusChangeEmitsOneAuditEntry(t *testing.T) {
	r, db := setup(t)

	createUser(t, db, "owner@lendit.local", models.RoleOwner)
	cookies := login(t, r, "owner@lendit.local")

	w := doJSON(r, http.MethodPost, "/listings", gin.H{
		"title":            "Volvo L60 loader",
		"category":         "loader",
		"location":         "Viljandi",
		"daily_rate_cents": 30000,
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var listing models.Listing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Equal(t, models.ListingDraft, listing.Status)

	w = doJSON(r, http.MethodPost, fmt.Sprintf("/listings/%d/status", listing.ID),
		gin.H{"status": "active"}, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entries, total, err := audit.List(db, audit.Filter{
		Action:     models.ActionListingStatusChanged,
		TargetType: models.TargetListing,
		TargetID:   fmt.Sprintf("%d", listing.ID),
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total, "exactly one entry per status change")

	entry := entries[0]
	require.NotNil(t, entry.ListingID)
	require.Equal(t, listing.ID, *entry.ListingID)
	require.JSONEq(t, `{"status":"draft"}`, string(entry.PreviousValue))
	require.JSONEq(t, `{"status":"active"}`, string(entry.NewValue))

	_, total, err = audit.List(db, audit.Filter{Action: models.ActionListingCreated})
	require.NoError(t, err)
	require.EqualValues(t, 1, total, "the create itself is audited once")
}

func TestListingUpdateEmitsSnapshots(t *testing.T) {
	r, db := setup(t)

	owner := createUser(t, db, "owner@lendit.local", models.RoleOwner)
	listing := activeListing(t, db, owner.ID)
	cookies := login(t, r, "owner@lendit.local")

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/listings/%d", listing.ID), gin.H{
		"title":            listing.Title,
		"category":         "excavator",
		"location":         listing.Location,
		"daily_rate_cents": 50000,
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entries, total, err := audit.List(db, audit.Filter{
		Action:   models.ActionListingUpdated,
		TargetID: fmt.Sprintf("%d", listing.ID),
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	var prev, next map[string]interface{}
	require.NoError(t, json.Unmarshal(entries[0].PreviousValue, &prev))
	require.NoError(t, json.Unmarshal(entries[0].NewValue, &next))
	require.EqualValues(t, 45000, prev["daily_rate_cents"])
	require.EqualValues(t, 50000, next["daily_rate_cents"])
}

func TestVerificationApprovalEmitsOneAuditEntry(t *testing.T) {
	r, db := setup(t)

	renter := createUser(t, db, "renter@lendit.local", models.RoleRenter)
	createUser(t, db, "admin@lendit.local", models.RoleAdmin)

	cookies := login(t, r, "renter@lendit.local")
	w := doJSON(r, http.MethodPost, "/verification", gin.H{
		"document_ref": "doc-store://renter-id-card",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var submitted struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))

	adminCookies := login(t, r, "admin@lendit.local")
	w = doJSON(r, http.MethodPost,
		fmt.Sprintf("/admin/verification/%d/approve", submitted.ID),
		gin.H{"note": "documents in order"}, adminCookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entries, total, err := audit.List(db, audit.Filter{
		Action:     models.ActionVerificationApproved,
		TargetType: models.TargetVerification,
		TargetID:   fmt.Sprintf("%d", submitted.ID),
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total, "exactly one entry per approval")

	entry := entries[0]
	require.NotNil(t, entry.TargetUserID)
	require.Equal(t, renter.ID, *entry.TargetUserID)
	require.JSONEq(t, `{"status":"pending"}`, string(entry.PreviousValue))
	require.JSONEq(t, `{"status":"approved"}`, string(entry.NewValue))

	var user models.User
	require.NoError(t, db.First(&user, renter.ID).Error)
	require.True(t, user.Verified)

	_, total, err = audit.List(db, audit.Filter{Action: models.ActionVerificationSubmitted})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestVerificationRejectionEmitsOneAuditEntry(t *testing.T) {
	r, db := setup(t)

	renter := createUser(t, db, "renter@lendit.local", models.RoleRenter)
	createUser(t, db, "admin@lendit.local", models.RoleAdmin)

	cookies := login(t, r, "renter@lendit.local")
	w := doJSON(r, http.MethodPost, "/verification", gin.H{
		"document_ref": "doc-store://blurry-scan",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	var submitted struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))

	adminCookies := login(t, r, "admin@lendit.local")
	w = doJSON(r, http.MethodPost,
		fmt.Sprintf("/admin/verification/%d/reject", submitted.ID),
		gin.H{"note": "document unreadable"}, adminCookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entries, total, err := audit.List(db, audit.Filter{
		Action:   models.ActionVerificationRejected,
		TargetID: fmt.Sprintf("%d", submitted.ID),
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.JSONEq(t, `{"status":"rejected"}`, string(entries[0].NewValue))

	var user models.User
	require.NoError(t, db.First(&user, renter.ID).Error)
	require.False(t, user.Verified)
}

func TestRegisterAndSuspendAreAudited(t *testing.T) {
	r, db := setup(t)

	w := doJSON(r, http.MethodPost, "/register", gin.H{
		"email":    "newowner@lendit.local",
		"password": "Password1!",
		"name":     "New Owner",
		"role":     "owner",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var registered struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	entries, total, err := audit.List(db, audit.Filter{
		Action:   models.ActionUserRegistered,
		TargetID: fmt.Sprintf("%d", registered.ID),
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.JSONEq(t, `{"email":"newowner@lendit.local","role":"owner"}`,
		string(entries[0].NewValue))

	createUser(t, db, "admin@lendit.local", models.RoleAdmin)
	adminCookies := login(t, r, "admin@lendit.local")

	w = doJSON(r, http.MethodPost,
		fmt.Sprintf("/admin/users/%d/suspend", registered.ID), nil, adminCookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entries, total, err = audit.List(db, audit.Filter{
		Action:   models.ActionUserSuspended,
		TargetID: fmt.Sprintf("%d", registered.ID),
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.JSONEq(t, `{"suspended":false}`, string(entries[0].PreviousValue))
	require.JSONEq(t, `{"suspended":true}`, string(entries[0].NewValue))
}
