package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orvium/orvium-api/internal/model"
)

func TestMergeVarsLaterWins(t *testing.T) {
	merged := MergeVars(
		Variables{"A": "one", "B": "base"},
		Variables{"B": "override", "C": "three"},
	)
	assert.Equal(t, Variables{"A": "one", "B": "override", "C": "three"}, merged)
}

func TestCommonVariables(t *testing.T) {
	vars := CommonVariables(testPlatform, "deposit-published")
	assert.Equal(t, "Orvium", vars["APP_NAME"])
	assert.Equal(t, "https://orvium.io", vars["PUBLIC_URL"])
	assert.Equal(t, "support@orvium.io", vars["SUPPORT_EMAIL"])
	assert.Equal(t, "deposit-published", vars["TEMPLATE_NAME"])
}

func TestVariablesLayering(t *testing.T) {
	d := testDeposit()
	c := testCommunity()
	sender := testUser("Ann", "Lee", "ann@example.com")

	e := NewDepositPublished(testPlatform, d, c, sender)
	vars := e.Variables()

	// one key from each layer
	assert.Equal(t, "Orvium", vars["APP_NAME"])
	assert.Equal(t, c.Name, vars["COMMUNITY_NAME"])
	assert.Equal(t, d.Title, vars["PUBLICATION_TITLE"])
	assert.Equal(t, "Ann Lee", vars["USER_NAME"])
	assert.Equal(t, "https://orvium.io/deposits/"+d.ID.String()+"/view", vars["PUBLICATION_URL"])
}

func TestVariablesExtraOverridesBase(t *testing.T) {
	e := NewDepositPublished(testPlatform, testDeposit(), testCommunity(), testUser("Ann", "Lee", "a@b.c"))
	e.payload.Extra = map[string]interface{}{"APP_NAME": "Overridden"}

	vars := e.Variables()
	assert.Equal(t, "Overridden", vars["APP_NAME"])
}

func TestVariablesNilFragmentsAreSafe(t *testing.T) {
	e := NewDepositPublished(testPlatform, nil, nil, nil)

	vars := e.Variables()
	assert.Equal(t, "Orvium", vars["APP_NAME"])
	_, hasCommunity := vars["COMMUNITY_NAME"]
	assert.False(t, hasCommunity)
	_, hasTitle := vars["PUBLICATION_TITLE"]
	assert.False(t, hasTitle)
}

func TestVariablesAuthorsFragment(t *testing.T) {
	d := testDeposit()
	d.Authors = model.AuthorList{
		{FirstName: "Ann", LastName: "Lee"},
		{FirstName: "Bob", LastName: "Ray"},
	}
	e := NewDepositPublished(testPlatform, d, testCommunity(), nil)

	authors, ok := e.Variables()["PUBLICATION_AUTHORS"].([]Variables)
	require.True(t, ok)
	require.Len(t, authors, 2)
	assert.Equal(t, "Ann", authors[0]["FIRST_NAME"])
	assert.Equal(t, "Ray", authors[1]["LAST_NAME"])
}

func TestRejectedCarriesReason(t *testing.T) {
	e := NewDepositRejected(testPlatform, testDeposit(), testCommunity(), testUser("Ann", "Lee", "a@b.c"), "needs work")
	assert.Equal(t, "needs work", e.Variables()["REASON"])
}

func TestInvitationExtras(t *testing.T) {
	d := testDeposit()
	limit := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	inv := &model.Invite{
		ID:         uuid.New(),
		InviteType: model.InviteTypeReview,
		DepositID:  d.ID,
		Addressee:  "bob@example.com",
		Message:    "please take a look",
		DateLimit:  &limit,
	}
	e := NewReviewInvitation(testPlatform, d, testCommunity(), testUser("Ann", "Lee", "ann@example.com"), inv)

	vars := e.Variables()
	assert.Equal(t, "review", vars["INVITATION_TYPE"])
	assert.Equal(t, "please take a look", vars["USER_MESSAGE"])
	assert.Equal(t, "bob@example.com", vars["ADDRESSEE"])
	assert.Equal(t, "14 September 2026", vars["INVITATION_DEADLINE"])
	assert.Equal(t, "Ann Lee", vars["SENDER_NAME"])
}

func TestConfirmEmailExtras(t *testing.T) {
	u := testUser("Bob", "Ray", "bob@example.com")
	e := NewConfirmEmail(testPlatform, u, "secret-token")

	vars := e.Variables()
	assert.Equal(t, "Bob Ray", vars["USER_NAME"])
	assert.Equal(t, "bob@example.com", vars["USER_EMAIL"])
	assert.Equal(t, "https://orvium.io/profile/confirm-email?token=secret-token", vars["CONFIRM_URL"])
}
