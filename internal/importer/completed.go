package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/services"
	"github.com/jhstephenson/callingtrack/internal/workflow"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Column indexes in the completed-roster export. This layout differs from the
// active roster: the occupant sits where the release column does there, and the
// export carries the release date and who performed the release.
const (
	completedColUnit         = 0
	completedColOrganization = 1
	completedColPosition     = 2
	completedColName         = 3
	completedColReleasedBy   = 4
	completedColDateReleased = 5
	completedColReplacement  = 6
	completedColHomeUnit     = 7
	completedColPresidency   = 8
	completedColBishop       = 9
	completedColHCApprove    = 11
	completedColDateCalled   = 13
	completedColSustained    = 14
	completedColSetApart     = 15
	completedColLCRUpdated   = 16
)

// RunCompleted backfills already-released callings from the completed-roster
// export. Rows land inactive with their release date set; a calling that
// already exists for the same unit, position and occupant is updated in place.
func (im *Importer) RunCompleted(r io.Reader) (*Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Two preamble rows and the header row
	for i := 0; i < 3; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("failed to read header rows: %w", err)
		}
	}

	stats := &Stats{}
	var currentUnit, currentOrg string

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		stats.RowsProcessed++

		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		if allEmpty(row) {
			stats.RowsSkipped++
			continue
		}

		if cell(row, completedColUnit) != "" {
			currentUnit = cell(row, completedColUnit)
			currentOrg = ""
		}
		if cell(row, completedColOrganization) != "" {
			currentOrg = cell(row, completedColOrganization)
		}

		name := cell(row, completedColName)
		if currentUnit == "" || currentOrg == "" || cell(row, completedColPosition) == "" ||
			!validOccupantName(name) {
			stats.RowsSkipped++
			continue
		}

		if err := im.processCompletedRow(row, currentUnit, currentOrg, name, stats); err != nil {
			logrus.WithError(err).WithField("row", stats.RowsProcessed).Warn("Skipping row")
			stats.RowsSkipped++
		}
	}

	return stats, nil
}

func (im *Importer) processCompletedRow(row []string, unitName, orgName, name string, stats *Stats) error {
	unit, err := im.getOrCreateUnit(unitName, stats)
	if err != nil {
		return err
	}

	org, err := im.getOrCreateOrganization(unit.ID, orgName, stats)
	if err != nil {
		return err
	}

	position, err := im.getOrCreatePosition(org.ID, cell(row, completedColPosition), stats)
	if err != nil {
		return err
	}

	homeUnitID := &unit.ID
	if homeName := optionalCell(row, completedColHomeUnit); homeName != "" {
		home, err := im.getOrCreateUnit(homeName, stats)
		if err != nil {
			return err
		}
		homeUnitID = &home.ID
	}

	releaseNotes := "Released before import"
	if releasedBy := optionalCell(row, completedColReleasedBy); releasedBy != "" {
		releaseNotes = "Released by " + releasedBy
	}

	notes := "Imported from completed roster"
	bishopConsulted := optionalCell(row, completedColBishop)
	lcrUpdated := strings.EqualFold(cell(row, completedColLCRUpdated), "TRUE")
	inactive := false

	change := workflow.ChangeRequest{
		UnitID:             &unit.ID,
		OrganizationID:     &org.ID,
		PositionID:         &position.ID,
		HomeUnitID:         homeUnitID,
		Name:               &name,
		DateCalled:         parseDate(cell(row, completedColDateCalled)),
		DateSustained:      parseDate(cell(row, completedColSustained)),
		DateSetApart:       parseDate(cell(row, completedColSetApart)),
		DateReleased:       parseDate(cell(row, completedColDateReleased)),
		PresidencyApproved: parseDate(cell(row, completedColPresidency)),
		HCApproved:         parseDate(cell(row, completedColHCApprove)),
		BishopConsultedBy:  &bishopConsulted,
		Notes:              &notes,
		ReleaseNotes:       &releaseNotes,
		LCRSynced:          &lcrUpdated,
		IsActive:           &inactive,
	}
	if replacement := optionalCell(row, completedColReplacement); replacement != "" {
		change.ProposedReplacement = &replacement
	}
	if lcrUpdated {
		status := workflow.StatusLCRUpdated
		change.Status = &status
	}

	var existing models.Calling
	err = im.db.
		Where("unit_id = ? AND position_id = ? AND name = ?", unit.ID, position.ID, name).
		First(&existing).Error
	switch {
	case err == nil:
		if _, _, err := im.callingService.UpdateCalling(existing.ID, services.ChangeInput{
			Change: change,
			Note:   "Updated from completed roster",
		}); err != nil {
			return err
		}
		stats.CallingsUpdated++
	case errors.Is(err, gorm.ErrRecordNotFound):
		if _, err := im.callingService.CreateCalling(services.ChangeInput{
			Change: change,
			Note:   "Imported from completed roster",
		}); err != nil {
			return err
		}
		stats.CallingsCreated++
	default:
		return err
	}

	return nil
}

// optionalCell returns the trimmed cell, treating n/a as absent
func optionalCell(row []string, index int) string {
	v := cell(row, index)
	if strings.EqualFold(v, "n/a") {
		return ""
	}
	return v
}

// validOccupantName rejects placeholder names and cells where a date slid
// into the name column.
func validOccupantName(name string) bool {
	switch strings.ToLower(name) {
	case "", "n/a", "vacant":
		return false
	}
	if strings.ContainsAny(name, "/-") && strings.ContainsAny(name, "0123456789") {
		return false
	}
	return true
}
