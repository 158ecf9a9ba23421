package domain

import "time"

type LoaRecord struct {
	ID         int64
	GuildID    string
	UserID     string
	Type       string
	StartedAt  time.Time
	Expiry     time.Time
	Accepted   bool
	Denied     bool
	Expired    bool
	UserRolled bool
	Started    bool
}

// Active reports whether the record currently counts toward the LOA role.
func (r LoaRecord) Active() bool {
	return r.Accepted && !r.Denied && !r.Expired && !r.UserRolled
}

// LoaTransition is what a lifecycle pass should do with a record.
type LoaTransition int

const (
	LoaUnchanged LoaTransition = iota
	LoaActivate
	LoaExpire
)

func (t LoaTransition) String() string {
	switch t {
	case LoaActivate:
		return "activate"
	case LoaExpire:
		return "expire"
	}
	return "unchanged"
}

// NextState is the only place the lifecycle rules live. Expiry wins over
// activation so a record that was never started still closes on time.
func NextState(r LoaRecord, now time.Time) LoaTransition {
	if !r.Accepted || r.Denied || r.Expired || r.UserRolled {
		return LoaUnchanged
	}
	if !now.Before(r.Expiry) {
		return LoaExpire
	}
	if !r.Started && !now.Before(r.StartedAt) {
		return LoaActivate
	}
	return LoaUnchanged
}
