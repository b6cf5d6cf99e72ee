// Package importer loads calling rosters from the spreadsheet export format:
// two preamble rows, a header row, then data rows where blank unit and
// organization cells carry the previous value forward.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/services"
	"github.com/jhstephenson/callingtrack/internal/workflow"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Column indexes in the roster export
const (
	colUnit              = 0
	colOrganization      = 1
	colPosition          = 2
	colReleasedName      = 3
	colDateCalled        = 5
	colCalledName        = 6
	colHomeUnit          = 7
	colPresidencyApprove = 8
	colBishopConsulted   = 9
	colHCApprove         = 10
	colDateSustained     = 13
	colDateSetApart      = 14
	colLCRUpdated        = 15
)

// Stats summarizes one import run
type Stats struct {
	RowsProcessed        int
	RowsSkipped          int
	UnitsCreated         int
	OrganizationsCreated int
	PositionsCreated     int
	CallingsCreated      int
	CallingsUpdated      int
	CallingsReleased     int
}

// Importer reads roster CSVs and writes through the calling service so every
// imported calling gets a proper history trail.
type Importer struct {
	db             *gorm.DB
	callingService *services.CallingService
}

// New creates an Importer
func New(db *gorm.DB, callingService *services.CallingService) *Importer {
	return &Importer{db: db, callingService: callingService}
}

// Run imports the roster from r. Rows that cannot be processed are skipped
// and logged; the import continues.
func (im *Importer) Run(r io.Reader) (*Stats, error) {
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

		if cell(row, colUnit) != "" {
			currentUnit = cell(row, colUnit)
			currentOrg = ""
		}
		if cell(row, colOrganization) != "" {
			currentOrg = cell(row, colOrganization)
		}

		if currentUnit == "" || currentOrg == "" || cell(row, colPosition) == "" {
			stats.RowsSkipped++
			continue
		}

		if err := im.processRow(row, currentUnit, currentOrg, stats); err != nil {
			logrus.WithError(err).WithField("row", stats.RowsProcessed).Warn("Skipping row")
			stats.RowsSkipped++
		}
	}

	return stats, nil
}

func (im *Importer) processRow(row []string, unitName, orgName string, stats *Stats) error {
	unit, err := im.getOrCreateUnit(unitName, stats)
	if err != nil {
		return err
	}

	org, err := im.getOrCreateOrganization(unit.ID, orgName, stats)
	if err != nil {
		return err
	}

	position, err := im.getOrCreatePosition(org.ID, cell(row, colPosition), stats)
	if err != nil {
		return err
	}

	if released := cell(row, colReleasedName); released != "" {
		if err := im.releaseExisting(unit.ID, position.ID, released, stats); err != nil {
			return err
		}
	}

	if called := cell(row, colCalledName); called != "" {
		if err := im.createCalling(unit, org, position, called, row, stats); err != nil {
			return err
		}
	}

	return nil
}

func (im *Importer) getOrCreateUnit(name string, stats *Stats) (*models.Unit, error) {
	var unit models.Unit
	err := im.db.Where("name = ?", name).First(&unit).Error
	if err == nil {
		return &unit, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	unit = models.Unit{
		Name:     name,
		UnitType: inferUnitType(name),
		IsActive: true,
	}
	if err := im.db.Create(&unit).Error; err != nil {
		return nil, err
	}
	stats.UnitsCreated++
	return &unit, nil
}

func (im *Importer) getOrCreateOrganization(unitID uint64, name string, stats *Stats) (*models.Organization, error) {
	var org models.Organization
	err := im.db.Where("unit_id = ? AND name = ?", unitID, name).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	org = models.Organization{
		UnitID:   unitID,
		Name:     name,
		IsActive: true,
	}
	if err := im.db.Create(&org).Error; err != nil {
		return nil, err
	}
	stats.OrganizationsCreated++
	return &org, nil
}

func (im *Importer) getOrCreatePosition(orgID uint64, title string, stats *Stats) (*models.Position, error) {
	var position models.Position
	err := im.db.Where("organization_id = ? AND title = ?", orgID, title).First(&position).Error
	if err == nil {
		return &position, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	position = models.Position{
		OrganizationID: orgID,
		Title:          title,
		IsLeadership:   inferLeadership(title),
		IsActive:       true,
	}
	if err := im.db.Create(&position).Error; err != nil {
		return nil, err
	}
	stats.PositionsCreated++
	return &position, nil
}

// releaseExisting closes out the active calling matching unit, position and
// occupant name, if one exists.
func (im *Importer) releaseExisting(unitID, positionID uint64, name string, stats *Stats) error {
	var calling models.Calling
	err := im.db.
		Where("unit_id = ? AND position_id = ? AND name = ? AND date_released IS NULL", unitID, positionID, name).
		First(&calling).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = im.callingService.ReleaseCalling(calling.ID, services.ReleaseInput{
		DateReleased: time.Now(),
		ReleaseNotes: "Released during roster import",
	})
	if err != nil {
		return err
	}
	stats.CallingsReleased++
	return nil
}

func (im *Importer) createCalling(unit *models.Unit, org *models.Organization, position *models.Position, name string, row []string, stats *Stats) error {
	// Skip when the occupant already holds this position
	var existing int64
	err := im.db.Model(&models.Calling{}).
		Where("unit_id = ? AND position_id = ? AND name = ? AND date_released IS NULL", unit.ID, position.ID, name).
		Count(&existing).Error
	if err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	homeUnitID := &unit.ID
	if homeName := cell(row, colHomeUnit); homeName != "" {
		home, err := im.getOrCreateUnit(homeName, stats)
		if err != nil {
			return err
		}
		homeUnitID = &home.ID
	}

	notes := fmt.Sprintf("Imported from CSV on %s", time.Now().Format("2006-01-02"))
	bishopConsulted := cell(row, colBishopConsulted)
	lcrUpdated := strings.EqualFold(cell(row, colLCRUpdated), "TRUE")

	change := workflow.ChangeRequest{
		UnitID:             &unit.ID,
		OrganizationID:     &org.ID,
		PositionID:         &position.ID,
		HomeUnitID:         homeUnitID,
		Name:               &name,
		DateCalled:         parseDate(cell(row, colDateCalled)),
		DateSustained:      parseDate(cell(row, colDateSustained)),
		DateSetApart:       parseDate(cell(row, colDateSetApart)),
		PresidencyApproved: parseDate(cell(row, colPresidencyApprove)),
		HCApproved:         parseDate(cell(row, colHCApprove)),
		BishopConsultedBy:  &bishopConsulted,
		Notes:              &notes,
		LCRSynced:          &lcrUpdated,
	}

	if _, err := im.callingService.CreateCalling(services.ChangeInput{
		Change: change,
		Note:   "Imported from roster",
	}); err != nil {
		return err
	}
	stats.CallingsCreated++
	return nil
}

func inferUnitType(name string) models.UnitType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "stake"):
		return models.UnitTypeStake
	case strings.Contains(lower, "branch"):
		return models.UnitTypeBranch
	}
	return models.UnitTypeWard
}

var leadershipTerms = []string{"president", "bishop", "counselor", "secretary", "clerk", "executive"}

func inferLeadership(title string) bool {
	lower := strings.ToLower(title)
	for _, term := range leadershipTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// parseDate accepts MM/DD/YYYY, MM-DD-YYYY or YYYY-MM-DD; anything else is
// treated as absent, matching the forgiving behavior of the spreadsheet source.
func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{"01/02/2006", "01-02-2006", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func cell(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}

func allEmpty(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
