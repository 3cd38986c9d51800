package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInviteCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := NewInviteCode()
		require.NoError(t, err)
		require.Len(t, code, InviteCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(InviteCodeAlphabet, r), "unexpected rune %q", r)
		}
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 190)
}

func TestNormalizeInviteCode(t *testing.T) {
	assert.Equal(t, "ABCD2345", NormalizeInviteCode("  abcd2345\n"))
	assert.Equal(t, "", NormalizeInviteCode("   "))
}

func TestInviteRedeem(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	inv := &Invite{ID: "i1", Code: "ABCD2345", CreatorID: "alice", Status: InviteStatusPending}
	require.NoError(t, inv.CheckConsistency())

	require.NoError(t, inv.Redeem("bob", at))
	assert.True(t, inv.IsUsed())
	assert.Equal(t, "bob", inv.BoundExecutor())
	assert.Equal(t, at, *inv.UsedAt)
	require.NoError(t, inv.CheckConsistency())

	err := inv.Redeem("carol", at.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInviteUsed)
	assert.Equal(t, "bob", inv.BoundExecutor())
	assert.Equal(t, at, *inv.UsedAt)
}

func TestInviteCheckConsistency(t *testing.T) {
	bob := "bob"
	now := time.Now()
	cases := map[string]Invite{
		"pending with executor": {Status: InviteStatusPending, ExecutorID: &bob},
		"pending with used_at":  {Status: InviteStatusPending, UsedAt: &now},
		"used without executor": {Status: InviteStatusUsed, UsedAt: &now},
		"used without used_at":  {Status: InviteStatusUsed, ExecutorID: &bob},
		"unknown status":        {Status: "expired"},
	}
	for name, inv := range cases {
		inv := inv
		t.Run(name, func(t *testing.T) {
			assert.Error(t, inv.CheckConsistency())
		})
	}
}
