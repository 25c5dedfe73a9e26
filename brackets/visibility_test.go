package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryVisibleFogDisabled(t *testing.T) {
	settings := VisibilitySettings{FogOfWar: false}
	entry := EntryRef{OwnerID: 1}
	stranger := Viewer{UserID: 2}

	assert.True(t, EntryVisible(entry, stranger, settings, DefaultVisibilityPolicy))
}

func TestEntryVisibleFogLiftsOnCompletion(t *testing.T) {
	settings := VisibilitySettings{FogOfWar: true, Complete: true}
	entry := EntryRef{OwnerID: 1}
	stranger := Viewer{UserID: 2}

	assert.True(t, EntryVisible(entry, stranger, settings, DefaultVisibilityPolicy))
}

func TestEntryVisibleUnderFog(t *testing.T) {
	settings := VisibilitySettings{
		FogOfWar:   true,
		Exceptions: map[int]bool{77: true},
	}
	entry := EntryRef{OwnerID: 1}

	assert.True(t, EntryVisible(entry, Viewer{UserID: 1}, settings, DefaultVisibilityPolicy), "owner sees own entry")
	assert.False(t, EntryVisible(entry, Viewer{UserID: 2}, settings, DefaultVisibilityPolicy), "stranger blocked")
	assert.True(t, EntryVisible(entry, Viewer{UserID: 77}, settings, DefaultVisibilityPolicy), "exception holder sees it")
	assert.True(t, EntryVisible(EntryRef{OwnerID: 9, IsOfficial: true}, Viewer{UserID: 2}, settings, DefaultVisibilityPolicy), "official entry always visible")
}

func TestEntryVisibleAdminNotExemptByDefault(t *testing.T) {
	settings := VisibilitySettings{FogOfWar: true}
	entry := EntryRef{OwnerID: 1}
	admin := Viewer{UserID: 2, IsAdmin: true}

	assert.False(t, EntryVisible(entry, admin, settings, DefaultVisibilityPolicy))

	exempting := VisibilityPolicy{AdminExempt: true}
	assert.True(t, EntryVisible(entry, admin, settings, exempting))
}

func TestEntryVisibleAdminOwnEntryUnderFog(t *testing.T) {
	settings := VisibilitySettings{FogOfWar: true}
	admin := Viewer{UserID: 5, IsAdmin: true}

	// The admin's own entry is visible through ownership, not role.
	assert.True(t, EntryVisible(EntryRef{OwnerID: 5}, admin, settings, DefaultVisibilityPolicy))
}
