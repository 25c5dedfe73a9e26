package brackets

// VisibilitySettings is the pool-level state the visibility gate needs.
type VisibilitySettings struct {
	// FogOfWar hides other members' picks until the tournament completes.
	FogOfWar bool

	// Complete lifts the fog for everyone.
	Complete bool

	// Exceptions holds viewer user ids explicitly granted early access.
	Exceptions map[int]bool
}

// VisibilityPolicy carries the deployment-level knobs of the gate.
// AdminExempt is false by default: fog of war binds admins too, so an owner
// entering results cannot quietly scout opposing brackets. A deployment that
// wants the exemption overrides the one field.
type VisibilityPolicy struct {
	AdminExempt bool
}

// DefaultVisibilityPolicy is the stock policy: nobody bypasses the fog.
var DefaultVisibilityPolicy = VisibilityPolicy{AdminExempt: false}

// EntryRef identifies the entry whose picks are being requested.
type EntryRef struct {
	OwnerID    int
	IsOfficial bool
}

// Viewer identifies who is asking.
type Viewer struct {
	UserID  int
	IsAdmin bool
}

// EntryVisible decides whether an entry's picks may be disclosed to a
// viewer. It is pure and is the single source of truth for pick visibility:
// every listing, leaderboard and rendering surface must route through it
// rather than re-deriving the rule.
//
// With fog of war off, or once the tournament is complete, every entry is
// visible. Under fog, a viewer sees the official reference entry, their own
// entry, and entries covered by an explicit exception. Nothing else.
func EntryVisible(entry EntryRef, viewer Viewer, settings VisibilitySettings, policy VisibilityPolicy) bool {
	if !settings.FogOfWar || settings.Complete {
		return true
	}
	if entry.IsOfficial {
		return true
	}
	if entry.OwnerID == viewer.UserID {
		return true
	}
	if settings.Exceptions[viewer.UserID] {
		return true
	}
	if policy.AdminExempt && viewer.IsAdmin {
		return true
	}
	return false
}
