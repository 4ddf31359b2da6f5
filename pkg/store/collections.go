package store

import (
	"fmt"
	"strings"

	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
)

// --- Module collections ---

func (s *Store) Reports() []schema.Record { return s.Get(schema.Reports) }

func (s *Store) AddReport(r schema.Record) error { return s.Add(schema.Reports, r) }

func (s *Store) Deviations() []schema.Record { return s.Get(schema.Deviations) }

func (s *Store) AddDeviation(r schema.Record) error { return s.Add(schema.Deviations, r) }

func (s *Store) Cleaning() []schema.Record { return s.Get(schema.Cleaning) }

func (s *Store) AddCleaning(r schema.Record) error { return s.Add(schema.Cleaning, r) }

func (s *Store) DDS() []schema.Record { return s.Get(schema.DDS) }

func (s *Store) AddDDS(r schema.Record) error { return s.Add(schema.DDS, r) }

func (s *Store) Attendance() []schema.Record { return s.Get(schema.ResiduesAttendance) }

func (s *Store) AddAttendance(r schema.Record) error { return s.Add(schema.ResiduesAttendance, r) }

// Reminders are personal but still audited on creation.
func (s *Store) Reminders() []schema.Record { return s.Get(schema.Reminders) }

func (s *Store) AddReminder(r schema.Record) error { return s.Add(schema.Reminders, r) }

func (s *Store) ResiduesTeam() []schema.Record { return s.Get(schema.ResiduesTeam) }

func (s *Store) SaveResiduesTeam(team []schema.Record) error { return s.Save(schema.ResiduesTeam, team) }

func (s *Store) DDSSchedule() []schema.Record { return s.Get(schema.DDSSchedule) }

// SaveDDSSchedule replaces the monthly speaker schedule and audits the change.
func (s *Store) SaveDDSSchedule(schedule []schema.Record, author schema.Identity) error {
	if err := s.Save(schema.DDSSchedule, schedule); err != nil {
		return err
	}
	return s.audit(schema.CategoryDDSSchedule, schema.ActionUpdate, "DDS schedule updated",
		"The monthly speaker schedule was updated.", author)
}

// --- Job titles ---

// DefaultJobTitles is served until the list is first written.
var DefaultJobTitles = []string{
	"Encarregado Geral",
	"Encarregado",
	"Engenheiro",
	"Preposto",
	"Técnico Meio Ambiente",
	"Técnico de Segurança",
	"Planejador (a)",
	"Aux. Administrativo",
	"Outros",
}

// JobTitles returns the stored administrative job titles or the defaults.
func (s *Store) JobTitles() []string {
	var titles []string
	if !medium.ReadJSON(s.medium, s.keys.Key(schema.JobTitles), &titles, s.logger) {
		return append([]string(nil), DefaultJobTitles...)
	}
	return titles
}

// AddJobTitle appends title unless it is already listed.
func (s *Store) AddJobTitle(title string) error {
	current := s.JobTitles()
	for _, t := range current {
		if t == title {
			return nil
		}
	}
	return s.saveStrings(schema.JobTitles, append(current, title))
}

// RemoveJobTitle drops title from the list.
func (s *Store) RemoveJobTitle(title string) error {
	current := s.JobTitles()
	kept := make([]string, 0, len(current))
	for _, t := range current {
		if t != title {
			kept = append(kept, t)
		}
	}
	return s.saveStrings(schema.JobTitles, kept)
}

// --- Operational roles ---

// DefaultOperationalRoles seeds the field roles list on first read.
var DefaultOperationalRoles = []string{
	"Jardineiro",
	"Ajudante",
	"Motorista do Pipa",
	"Motorista do Munck",
	"Sinaleiro",
	"Mecânico montador",
	"Auxiliar de elétrica",
}

// OperationalRoles returns the field roles, persisting the defaults the first time.
func (s *Store) OperationalRoles() ([]string, error) {
	var roles []string
	if medium.ReadJSON(s.medium, s.keys.Key(schema.OperationalRoles), &roles, s.logger) {
		return roles, nil
	}
	roles = append([]string(nil), DefaultOperationalRoles...)
	if err := s.saveStrings(schema.OperationalRoles, roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// AddOperationalRole appends role unless a case-insensitive match exists. The original casing is kept.
func (s *Store) AddOperationalRole(role string) error {
	current, err := s.OperationalRoles()
	if err != nil {
		return err
	}
	for _, r := range current {
		if strings.EqualFold(r, role) {
			return nil
		}
	}
	return s.saveStrings(schema.OperationalRoles, append(current, role))
}

func (s *Store) saveStrings(ns schema.Namespace, values []string) error {
	if err := medium.WriteJSON(s.medium, s.keys.Key(ns), values); err != nil {
		return fmt.Errorf("save %s: %w", ns, err)
	}
	return nil
}
