package schema

import "fmt"

// Namespace names one collection (or scalar) in the medium.
type Namespace string

const (
	Reports             Namespace = "reports"
	Deviations          Namespace = "deviations"
	Cleaning            Namespace = "cleaning"
	Matrix              Namespace = "matrix"
	LastResetWatermark  Namespace = "last-reset-watermark"
	DDS                 Namespace = "dds"
	DDSSchedule         Namespace = "dds-schedule"
	Safety              Namespace = "safety"
	Stock               Namespace = "stock"
	Inspection          Namespace = "inspection"
	EquipmentInspection Namespace = "equipment-inspection"
	Logs                Namespace = "logs"
	Notifications       Namespace = "notifications"
	Reminders           Namespace = "reminders"
	JobTitles           Namespace = "job-titles"
	AnnouncementNS      Namespace = "announcement"
	ResiduesAttendance  Namespace = "residues-attendance"
	ResiduesTeam        Namespace = "residues-team"
	OperationalRoles    Namespace = "operational-roles"
	WorkPermits         Namespace = "work-permits"
	SiteInspections     Namespace = "site-inspections"
	AppConfigNS         Namespace = "app-config"
	GlobalResetSignal   Namespace = "global-reset-signal"
	ResetAck            Namespace = "reset-ack"
)

// AllNamespaces lists every fixed namespace, in declaration order.
var AllNamespaces = []Namespace{
	Reports, Deviations, Cleaning, Matrix, LastResetWatermark, DDS, DDSSchedule, Safety, Stock,
	Inspection, EquipmentInspection, Logs, Notifications, Reminders, JobTitles, AnnouncementNS,
	ResiduesAttendance, ResiduesTeam, OperationalRoles, WorkPermits, SiteInspections, AppConfigNS,
	GlobalResetSignal, ResetAck,
}

// DefaultPrefix is the application token every key starts with.
const DefaultPrefix = "painelSucena"

// Keyspace maps namespaces onto medium keys.
type Keyspace struct {
	Prefix string
}

// DefaultKeyspace uses DefaultPrefix.
var DefaultKeyspace = Keyspace{Prefix: DefaultPrefix}

func (k Keyspace) prefix() string {
	if k.Prefix == "" {
		return DefaultPrefix
	}
	return k.Prefix
}

// Key returns the medium key for ns.
func (k Keyspace) Key(ns Namespace) string {
	return k.prefix() + "_" + string(ns)
}

// SeenKey returns the per-client flag recording that announcement id was acknowledged.
func (k Keyspace) SeenKey(announcementID string) string {
	return k.prefix() + "_seen:" + announcementID
}

// ForbiddenColorAlertKey returns the once-per-period flag for the monthly color announcement.
// month0 is zero based, as in period keys.
func (k Keyspace) ForbiddenColorAlertKey(month0, year int) string {
	return fmt.Sprintf("%s_forbidden-color-alert:%d:%d", k.prefix(), month0, year)
}

// Namespace resolves a medium key back to its namespace.
func (k Keyspace) Namespace(key string) (Namespace, bool) {
	p := k.prefix() + "_"
	if len(key) <= len(p) || key[:len(p)] != p {
		return "", false
	}
	return Namespace(key[len(p):]), true
}
