package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"docket/internal/config"
	"docket/internal/entities"
	"docket/internal/store"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Ingest.Region = "us_xx_test"

	st, err := store.Open(&cfg)
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("store.Close() error: %v", err)
		}
	})
	return NewRunner(nil, st)
}

func writeRecordFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write record file: %v", err)
	}
	return path
}

const scrapeOne = `[
  {
    "external_id": "P-1",
    "full_name": "JANE DOE",
    "birthdate": "1980-03-02",
    "bookings": [
      {
        "external_id": "B-1",
        "admission_date": "2024-01-15",
        "custody_status": "in_custody",
        "facility": "COUNTY JAIL",
        "holds": [{"jurisdiction_name": "FEDERAL", "status": "active"}],
        "charges": [
          {"name": "THEFT", "statute": "123.4", "status": "pending",
           "bond_ref": "b1", "bond": {"amount_dollars": 5000, "type": "cash", "status": "pending"}},
          {"name": "TRESPASS", "statute": "567.8", "status": "pending",
           "bond_ref": "b1", "bond": {"amount_dollars": 5000, "type": "cash", "status": "pending"}}
        ]
      }
    ]
  }
]`

const scrapeTwo = `[
  {
    "external_id": "P-1",
    "full_name": "JANE DOE",
    "birthdate": "1980-03-02",
    "bookings": [
      {
        "external_id": "B-1",
        "admission_date": "2024-01-15",
        "release_date": "2024-04-01",
        "custody_status": "released",
        "facility": "COUNTY JAIL",
        "charges": [
          {"name": "THEFT", "statute": "123.4", "status": "convicted",
           "bond_ref": "b1", "bond": {"amount_dollars": 5000, "type": "cash", "status": "posted"}},
          {"name": "TRESPASS", "statute": "567.8", "status": "dropped",
           "bond_ref": "b1", "bond": {"amount_dollars": 5000, "type": "cash", "status": "posted"}}
        ]
      }
    ]
  }
]`

func TestIngestFileNewPeople(t *testing.T) {
	runner := newTestRunner(t)
	ctx := context.Background()

	report, err := runner.IngestFile(ctx, "us_xx_test", writeRecordFile(t, scrapeOne))
	if err != nil {
		t.Fatalf("IngestFile() error: %v", err)
	}
	if report.People != 1 || report.Matched != 0 || report.Errors != 0 {
		t.Errorf("report = %+v, want 1 new person with no matches", report)
	}
	if report.BatchID == "" {
		t.Error("report should carry a batch id")
	}

	summary, err := runner.store.Summarize(ctx, "us_xx_test")
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if summary.People != 1 || summary.OpenBookings != 1 {
		t.Errorf("summary = %+v, want 1 person with 1 open booking", summary)
	}
}

func TestIngestFileSecondScrapeMatches(t *testing.T) {
	runner := newTestRunner(t)
	ctx := context.Background()

	if _, err := runner.IngestFile(ctx, "us_xx_test", writeRecordFile(t, scrapeOne)); err != nil {
		t.Fatalf("first IngestFile() error: %v", err)
	}
	report, err := runner.IngestFile(ctx, "us_xx_test", writeRecordFile(t, scrapeTwo))
	if err != nil {
		t.Fatalf("second IngestFile() error: %v", err)
	}
	if report.Matched != 1 || report.Errors != 0 {
		t.Errorf("report = %+v, want the person matched", report)
	}

	summary, err := runner.store.Summarize(ctx, "us_xx_test")
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if summary.People != 1 {
		t.Errorf("expected 1 person after re-scrape, got %d", summary.People)
	}
	if summary.OpenBookings != 0 {
		t.Errorf("expected booking closed after re-scrape, got %d open", summary.OpenBookings)
	}
}

func TestIngestFileSharedBondSurvivesRoundTrip(t *testing.T) {
	runner := newTestRunner(t)
	ctx := context.Background()

	if _, err := runner.IngestFile(ctx, "us_xx_test", writeRecordFile(t, scrapeOne)); err != nil {
		t.Fatalf("IngestFile() error: %v", err)
	}

	people, err := runner.store.ReadPeopleWithOpenBookings(ctx, "us_xx_test", nil)
	if err != nil {
		t.Fatalf("ReadPeopleWithOpenBookings() error: %v", err)
	}
	charges := people[0].Bookings[0].Charges
	if len(charges) != 2 {
		t.Fatalf("expected 2 charges, got %d", len(charges))
	}
	if charges[0].Bond == nil || charges[0].Bond != charges[1].Bond {
		t.Error("bond_ref sharing was lost between decode and store")
	}
}

func TestReconcileErroredPersonIsNotCommitted(t *testing.T) {
	runner := newTestRunner(t)
	ctx := context.Background()

	if _, err := runner.IngestFile(ctx, "us_xx_test", writeRecordFile(t, scrapeOne)); err != nil {
		t.Fatalf("seed IngestFile() error: %v", err)
	}

	// Two ingested graphs claim the same stored person; the second collides
	// and must stay out of the database entirely.
	colliding := []*entities.Person{
		{ExternalID: "P-1", Region: "us_xx_test", FullName: "JANE DOE"},
		{ExternalID: "P-1", Region: "us_xx_test", FullName: "JANE DOE"},
	}
	report, err := runner.Reconcile(ctx, "us_xx_test", colliding)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	if report.Errors != 1 || report.Matched != 1 {
		t.Fatalf("report = %+v, want 1 matched, 1 error", report)
	}
	if report.People != 2 {
		t.Errorf("report people = %d, want the full batch counted", report.People)
	}

	rows, err := runner.store.ReadPeopleByExternalIDs(ctx, "us_xx_test",
		[]*entities.Person{{ExternalID: "P-1"}})
	if err != nil {
		t.Fatalf("ReadPeopleByExternalIDs() error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 stored row for P-1 after errored batch, got %d", len(rows))
	}
	if colliding[1].ID != 0 {
		t.Errorf("errored person should keep zero id, got %d", colliding[1].ID)
	}
}

func TestIngestFileRejectsMalformedJSON(t *testing.T) {
	runner := newTestRunner(t)
	if _, err := runner.IngestFile(context.Background(), "us_xx_test", writeRecordFile(t, "{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

const periodFile = `[
  {
    "person_external_id": "P-1",
    "periods": [
      {"state_code": "US_XX", "status": "not_in_custody",
       "admission_date": "2008-11-20", "admission_reason": "new_admission",
       "release_date": "2010-12-04", "release_reason": "sentence_served"},
      {"state_code": "US_XX", "status": "not_in_custody",
       "admission_date": "2011-04-05", "admission_reason": "new_admission",
       "release_date": "2014-04-14", "release_reason": "sentence_served"}
    ]
  },
  {
    "person_external_id": "P-2",
    "periods": [
      {"state_code": "US_XX", "status": "not_in_custody",
       "admission_date": "2009-01-01", "admission_reason": "new_admission",
       "release_date": "2010-06-01", "release_reason": "sentence_served"}
    ]
  }
]`

func TestLoadPeriodsAndReport(t *testing.T) {
	runner := newTestRunner(t)
	ctx := context.Background()

	loaded, err := runner.LoadPeriodsFile(ctx, "us_xx_test", writeRecordFile(t, periodFile))
	if err != nil {
		t.Fatalf("LoadPeriodsFile() error: %v", err)
	}
	if loaded.People != 2 || loaded.Periods != 3 {
		t.Errorf("load report = %+v, want 2 people / 3 periods", loaded)
	}

	report, err := runner.RecidivismReport(ctx, "us_xx_test")
	if err != nil {
		t.Fatalf("RecidivismReport() error: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("expected cohorts 2010 and 2014, got %+v", report)
	}

	cohort2010 := report[0]
	if cohort2010.Cohort != 2010 || cohort2010.Releases != 2 || cohort2010.Recidivists != 1 {
		t.Errorf("2010 cohort = %+v, want 2 releases, 1 recidivist", cohort2010)
	}
	if cohort2010.Rate != 0.5 {
		t.Errorf("2010 rate = %v, want 0.5", cohort2010.Rate)
	}

	cohort2014 := report[1]
	if cohort2014.Cohort != 2014 || cohort2014.Releases != 1 || cohort2014.Recidivists != 0 {
		t.Errorf("2014 cohort = %+v, want 1 release, 0 recidivists", cohort2014)
	}
}

func TestLoadPeriodsFileRequiresPersonID(t *testing.T) {
	runner := newTestRunner(t)
	bad := `[{"person_external_id": "", "periods": []}]`
	if _, err := runner.LoadPeriodsFile(context.Background(), "us_xx_test", writeRecordFile(t, bad)); err == nil {
		t.Fatal("expected error for missing person_external_id")
	}
}
