package timeline

import (
	"time"

	"github.com/duosync/backend/internal/storage/models"
	"github.com/duosync/backend/internal/timeutil"
)

// ZoneClock is the current wall-clock label of one participant.
type ZoneClock struct {
	User  models.UserID `json:"user"`
	Label string        `json:"label"`
	Zone  string        `json:"zone"`
	Time  string        `json:"time"`
}

// Clock holds both participants' clock labels for the same instant.
type Clock struct {
	Me      ZoneClock `json:"me"`
	Partner ZoneClock `json:"partner"`
	At      time.Time `json:"at"`
}

// Clock formats now in both participants' zones.
func (e *Engine) Clock(now time.Time) Clock {
	return Clock{
		Me:      zoneClock(e.me, now),
		Partner: zoneClock(e.partner, now),
		At:      now.UTC(),
	}
}

func zoneClock(p Participant, now time.Time) ZoneClock {
	row := toRow(p)
	zone := p.Zone
	if zone == nil {
		zone = time.UTC
	}
	return ZoneClock{
		User:  row.User,
		Label: row.Label,
		Zone:  row.Zone,
		Time:  timeutil.CurrentTimeLabel(now, zone),
	}
}
