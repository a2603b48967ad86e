package domain

import "time"

// AllowedHost is a single allow-list entry. Hostname is stored lowercase.
type AllowedHost struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Hostname string `gorm:"type:text;uniqueIndex;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AllowedHost) TableName() string {
	return "allowed_hosts"
}

// HostnamesOf flattens a slice of rows into their hostnames, keeping row order.
func HostnamesOf(hosts []AllowedHost) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, h.Hostname)
	}
	return out
}
