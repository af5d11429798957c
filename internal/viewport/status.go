package viewport

import (
	"sort"

	"venue-feedback-backend/internal/model"
	"venue-feedback-backend/internal/triage"
)

// TableStatus is the table's display state on the floor plan.
type TableStatus string

const (
	StatusAssistancePending      TableStatus = "assistance_pending"
	StatusAssistanceAcknowledged TableStatus = "assistance_acknowledged"
	StatusUnhappy                TableStatus = "unhappy"
	StatusAttention              TableStatus = "attention"
	StatusHappy                  TableStatus = "happy"
	StatusNoData                 TableStatus = "no_data"
)

// Display colors per status.
var statusColors = map[TableStatus]string{
	StatusAssistancePending:      "#d32f2f",
	StatusAssistanceAcknowledged: "#f57c00",
	StatusUnhappy:                "#e53935",
	StatusAttention:              "#fbc02d",
	StatusHappy:                  "#43a047",
	StatusNoData:                 "#9e9e9e",
}

// Color returns the display color for the status.
func (s TableStatus) Color() string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return statusColors[StatusNoData]
}

// Rating bands for table coloring.
const (
	unhappyBandMax   = 2.0
	attentionBandMax = 4.0
)

// TableStatuses derives the display state for every table number in the
// snapshot. Precedence is fixed: an open pending assistance request
// beats everything, then an acknowledged one, then the feedback rating
// bands, then no-data. The most actionable situation always wins.
func TableStatuses(sessions []triage.FeedbackSession, requests []model.AssistanceRequest) map[int]TableStatus {
	statuses := make(map[int]TableStatus)

	type ratings struct {
		sum float64
		n   int
	}
	perTable := make(map[int]*ratings)
	for i := range sessions {
		s := &sessions[i]
		if s.AverageRating == nil {
			continue
		}
		r := perTable[s.TableNumber]
		if r == nil {
			r = &ratings{}
			perTable[s.TableNumber] = r
		}
		r.sum += *s.AverageRating
		r.n++
	}

	for table, r := range perTable {
		avg := r.sum / float64(r.n)
		switch {
		case avg <= unhappyBandMax:
			statuses[table] = StatusUnhappy
		case avg <= attentionBandMax:
			statuses[table] = StatusAttention
		default:
			statuses[table] = StatusHappy
		}
	}

	// Assistance overrides any feedback-derived state; pending beats
	// acknowledged when a table has both.
	for i := range requests {
		r := &requests[i]
		switch r.Status {
		case model.AssistancePending:
			statuses[r.TableNumber] = StatusAssistancePending
		case model.AssistanceAcknowledged:
			if statuses[r.TableNumber] != StatusAssistancePending {
				statuses[r.TableNumber] = StatusAssistanceAcknowledged
			}
		}
	}

	return statuses
}

// StatusForTable resolves one table's status, defaulting to no-data.
func StatusForTable(statuses map[int]TableStatus, tableNumber int) TableStatus {
	if s, ok := statuses[tableNumber]; ok {
		return s
	}
	return StatusNoData
}

// ZoneSummary is the zone-level overview row.
type ZoneSummary struct {
	ZoneID     int64   `json:"zone_id"`
	Name       string  `json:"name"`
	OpenItems  int     `json:"open_items"`
	AvgUrgency float64 `json:"avg_urgency"`
}

// ZoneOverview computes per-zone open-item counts and the mean urgency
// rank, scoped to each zone's table membership. Zones come back in
// display order.
func ZoneOverview(zones []model.Zone, tables []model.Table, queue []triage.Entry) []ZoneSummary {
	zoneByTable := make(map[int]int64, len(tables))
	for i := range tables {
		zoneByTable[tables[i].Number] = tables[i].ZoneID
	}

	type acc struct {
		sum   int
		count int
	}
	perZone := make(map[int64]*acc)
	for i := range queue {
		e := &queue[i]
		zoneID, ok := zoneByTable[e.TableNumber()]
		if !ok {
			continue
		}
		a := perZone[zoneID]
		if a == nil {
			a = &acc{}
			perZone[zoneID] = a
		}
		a.sum += int(e.Urgency)
		a.count++
	}

	summaries := make([]ZoneSummary, 0, len(zones))
	for i := range zones {
		z := &zones[i]
		summary := ZoneSummary{ZoneID: z.ID, Name: z.Name}
		if a := perZone[z.ID]; a != nil {
			summary.OpenItems = a.count
			summary.AvgUrgency = float64(a.sum) / float64(a.count)
		}
		summaries = append(summaries, summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return displayOrder(zones, summaries[i].ZoneID) < displayOrder(zones, summaries[j].ZoneID)
	})
	return summaries
}

func displayOrder(zones []model.Zone, zoneID int64) int {
	for i := range zones {
		if zones[i].ID == zoneID {
			return zones[i].DisplayOrder
		}
	}
	return int(^uint(0) >> 1)
}
