package engine_test

import (
	"github.com/shopspring/decimal"

	"github.com/meridian/payroll-engine/dataset"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// Shared by every engine test file.

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func job(rate, term string, pct float64, orgn, title string) dataset.Job {
	return dataset.Job{
		AnnualSalaryRate: dataset.FlexValue(rate),
		SalaryTerm:       term,
		ApptPercent:      dataset.FlexValue(decimal.NewFromFloat(pct).String()),
		JobOrgn:          orgn,
		JobTitle:         title,
	}
}

// fullTimeJob is the common case: annual rate, 100% appointment.
func fullTimeJob(rate float64, orgn, title string) dataset.Job {
	return job(decimal.NewFromFloat(rate).String(), "", 100, orgn, title)
}

func snap(date, source string, jobs ...dataset.Job) dataset.Snapshot {
	return dataset.Snapshot{Date: date, Source: source, Jobs: jobs}
}

func employee(snaps ...dataset.Snapshot) *dataset.Employee {
	emp := &dataset.Employee{Timeline: snaps}
	emp.SortTimeline()
	return emp
}

func singleDataset(name string, emp *dataset.Employee) dataset.Dataset {
	return dataset.Dataset{name: emp}
}
