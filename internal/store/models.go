package store

import "time"

// Contribution is one accepted row in the contribution archive. A row is
// written for every merged peer snapshot and every full import, with the raw
// payload as it arrived.
type Contribution struct {
	ID              int64
	Profile         string
	Kind            string // "merge" or "import"
	ContributorID   string
	ContributorName string
	Payload         []byte
	ReceivedAt      time.Time
}
