package store

import (
	"fmt"

	"github.com/celerix-dev/painel-store/pkg/schema"
)

type description struct {
	category    schema.Category
	description string
	details     string
}

type describer func(r schema.Record) description

// describers maps each classified namespace to the audit entry its additions produce.
var describers = map[schema.Namespace]describer{
	schema.Reports: func(r schema.Record) description {
		return description{schema.CategoryReport, "New general report",
			fmt.Sprintf("Location: %s, Date: %s", r.String("location"), r.String("date"))}
	},
	schema.Deviations: func(r schema.Record) description {
		return description{schema.CategoryDeviation, "New deviation recorded", "Type: " + r.String("type")}
	},
	schema.Cleaning: func(r schema.Record) description {
		return description{schema.CategoryCleaning, "Cleaning record", "Area: " + r.String("area")}
	},
	schema.DDS: func(r schema.Record) description {
		return description{schema.CategoryDDS, "DDS held", "Theme: " + r.String("theme")}
	},
	schema.ResiduesAttendance: func(r schema.Record) description {
		return description{schema.CategoryAttendance, "Attendance list", "Date: " + r.String("date")}
	},
	schema.Safety: func(r schema.Record) description {
		return description{schema.CategorySafety,
			fmt.Sprintf("Safety: %s (%s)", r.String("type"), r.String("riskLevel")), "ID: " + r.ID()}
	},
	schema.Stock: func(r schema.Record) description {
		return description{schema.CategoryOrders, "New order: " + r.String("materialName"), "ID: " + r.ID()}
	},
	schema.Inspection: func(r schema.Record) description {
		return description{schema.CategoryInspection, "New inspection: " + r.String("task"), "ID: " + r.ID()}
	},
	schema.EquipmentInspection: func(r schema.Record) description {
		return description{schema.CategoryInspection, "Equipment inspection: " + r.String("vehicleName"), "ID: " + r.ID()}
	},
	schema.WorkPermits: func(r schema.Record) description {
		return description{schema.CategoryWorkPermit, "New work permit: " + r.String("category"), "ID: " + r.ID()}
	},
	schema.SiteInspections: func(r schema.Record) description {
		return description{schema.CategorySite, "New site inspection", "ID: " + r.ID()}
	},
}

// describe falls back to the OTHER category for unclassified namespaces.
func describe(ns schema.Namespace, r schema.Record) description {
	if fn, ok := describers[ns]; ok {
		return fn(r)
	}
	return description{schema.CategoryOther, "New record", "ID: " + r.ID()}
}

// CategoryOf returns the audit category additions to ns are filed under.
func CategoryOf(ns schema.Namespace) schema.Category {
	return describe(ns, schema.Record{}).category
}
