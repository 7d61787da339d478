package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/noah-isme/leave-planner-api/internal/dto"
	"github.com/noah-isme/leave-planner-api/internal/planner"
)

// SnapshotFile is the on-disk attendance snapshot read by the recommend command.
type SnapshotFile struct {
	GlobalThreshold *float64            `toml:"global_threshold"`
	Subjects        []SnapshotSubject   `toml:"subjects"`
	Schedule        map[string][]string `toml:"schedule"`
	Calendar        map[string]string   `toml:"calendar"`
	Holidays        []SnapshotHoliday   `toml:"holidays"`
}

// SnapshotSubject is one [[subjects]] table.
type SnapshotSubject struct {
	ID        string  `toml:"id"`
	Name      string  `toml:"name"`
	Attended  int     `toml:"attended"`
	Total     int     `toml:"total"`
	Threshold float64 `toml:"threshold"`
}

// SnapshotHoliday is one [[holidays]] table.
type SnapshotHoliday struct {
	Name      string `toml:"name"`
	StartDate string `toml:"start_date"`
	EndDate   string `toml:"end_date"`
}

// LoadSnapshot decodes a TOML snapshot. Unknown keys are rejected so typos
// do not silently drop data.
func LoadSnapshot(path string) (SnapshotFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SnapshotFile{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap SnapshotFile
	meta, err := toml.Decode(string(raw), &snap)
	if err != nil {
		return SnapshotFile{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return SnapshotFile{}, fmt.Errorf("decode snapshot: unknown key %q", undecoded[0].String())
	}
	return snap, nil
}

// Request converts the snapshot into a simulation request.
func (s SnapshotFile) Request(search dto.SearchParams) dto.SimulateRequest {
	req := dto.SimulateRequest{
		SearchParams:    search,
		GlobalThreshold: s.GlobalThreshold,
		Subjects:        make([]dto.SnapshotSubject, len(s.Subjects)),
		WeeklySchedule:  planner.WeeklySchedule(s.Schedule),
		Calendar:        s.Calendar,
		Holidays:        make([]dto.HolidayRange, len(s.Holidays)),
	}
	for i, sub := range s.Subjects {
		req.Subjects[i] = dto.SnapshotSubject{ID: sub.ID, Name: sub.Name, Attended: sub.Attended, Total: sub.Total, Threshold: sub.Threshold}
	}
	for i, h := range s.Holidays {
		req.Holidays[i] = dto.HolidayRange{Name: h.Name, StartDate: h.StartDate, EndDate: h.EndDate}
	}
	return req
}
