package topic

import (
	"time"
)

// DateLayout is the ISO calendar date format used for hashing and day keys.
const DateLayout = "2006-01-02"

// Topic is the lesson topic chosen for a session.
type Topic struct {
	Subject        string
	Topic          string
	SubjectKey     string // empty when chosen from the default list
	Ordinal        int    // 1-based position in the list it was chosen from
	TotalInCatalog int
}

// Key identifies the topic in session history.
func (t Topic) Key() string {
	if t.SubjectKey != "" {
		return t.SubjectKey + "/" + t.Topic
	}
	return "default/" + t.Topic
}

// DateHash computes the rolling hash h = h*31 + r over the date string,
// wrapping as a signed 32-bit integer, and returns its magnitude.
func DateHash(date string) int64 {
	var h int32
	for _, r := range date {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Index maps a date hash and rotation offset onto [0, size).
func Index(hash int64, offset, size int) int {
	if size <= 0 {
		return 0
	}
	i := (hash + int64(offset)) % int64(size)
	if i < 0 {
		i += int64(size)
	}
	return int(i)
}

// Select picks the topic for the given calendar day and rotation offset.
// When catalogKey resolves to a subject its list is used, otherwise the
// default cross-subject list. The result is a pure function of its inputs.
func Select(c *Catalog, catalogKey string, day time.Time, offset int) Topic {
	hash := DateHash(day.Format(DateLayout))

	if s, ok := c.Lookup(catalogKey); ok {
		i := Index(hash, offset, len(s.Topics))
		return Topic{
			Subject:        s.Name,
			Topic:          s.Topics[i],
			SubjectKey:     s.Key,
			Ordinal:        i + 1,
			TotalInCatalog: len(s.Topics),
		}
	}

	i := Index(hash, offset, len(c.Default))
	e := c.Default[i]
	return Topic{
		Subject:        e.Subject,
		Topic:          e.Topic,
		Ordinal:        i + 1,
		TotalInCatalog: len(c.Default),
	}
}
