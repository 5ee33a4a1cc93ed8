package services

import (
	"testing"
	"time"

	"billable/internal/billing"
	"billable/internal/models"
	"billable/internal/pagination"
	"billable/internal/testutil"
)

func intPtr(v int) *int          { return &v }
func strPtr(v string) *string    { return &v }
func boolPtr(v bool) *bool       { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestDeriveDuration(t *testing.T) {
	tests := []struct {
		name      string
		startTime string
		endTime   string
		want      int
		wantErr   bool
	}{
		{"same_day", "09:00", "17:30", 510, false},
		{"one_minute", "09:00", "09:01", 1, false},
		{"zero_span", "09:00", "09:00", 0, false},
		{"crosses_midnight", "23:30", "00:30", 60, false},
		{"almost_full_day", "08:00", "07:59", 1439, false},
		{"bad_start", "9am", "17:00", 0, true},
		{"bad_end", "09:00", "25:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := deriveDuration(tt.startTime, tt.endTime)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			testutil.AssertNoError(t, err)
			if got != tt.want {
				t.Errorf("expected %d minutes, got %d", tt.want, got)
			}
		})
	}
}

func TestCreateTimeEntry(t *testing.T) {
	t.Run("explicit_duration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)

		entry, err := teSvc.CreateTimeEntry(user.ID, TimeEntryInput{
			ProjectID: project.ID,
			Duration:  intPtr(90),
		})
		testutil.AssertNoError(t, err)
		if entry.Duration != 90 {
			t.Errorf("expected duration 90, got %d", entry.Duration)
		}
		if !entry.IsBillable {
			t.Error("entries should default to billable")
		}
		if entry.IsBilled {
			t.Error("new entries should be unbilled")
		}
	})

	t.Run("derived_duration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)

		entry, err := teSvc.CreateTimeEntry(user.ID, TimeEntryInput{
			ProjectID: project.ID,
			StartTime: "09:00",
			EndTime:   "12:15",
		})
		testutil.AssertNoError(t, err)
		if entry.Duration != 195 {
			t.Errorf("expected duration 195, got %d", entry.Duration)
		}
	})

	t.Run("explicit_duration_wins_over_clock_times", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)

		entry, err := teSvc.CreateTimeEntry(user.ID, TimeEntryInput{
			ProjectID: project.ID,
			StartTime: "09:00",
			EndTime:   "17:00",
			Duration:  intPtr(60),
		})
		testutil.AssertNoError(t, err)
		if entry.Duration != 60 {
			t.Errorf("expected explicit duration 60, got %d", entry.Duration)
		}
	})

	t.Run("foreign_project", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user1.ID)
		project := testutil.CreateTestProject(t, db, user1.ID, client.ID)

		_, err := teSvc.CreateTimeEntry(user2.ID, TimeEntryInput{
			ProjectID: project.ID,
			Duration:  intPtr(60),
		})
		testutil.AssertAppError(t, err, "PROJECT_NOT_FOUND")
	})

	t.Run("negative_duration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)

		_, err := teSvc.CreateTimeEntry(user.ID, TimeEntryInput{
			ProjectID: project.ID,
			Duration:  intPtr(-5),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateTimeEntry(t *testing.T) {
	t.Run("billed_entry_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		invSvc := NewInvoiceService(db)
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)
		entry := testutil.CreateTestTimeEntry(t, db, user.ID, project.ID, 60)

		_, err := invSvc.CreateInvoice(user.ID, InvoiceInput{
			ClientID:     client.ID,
			LineItems:    []billing.LineInput{{Description: "Work", Quantity: 1, Rate: 100}},
			TimeEntryIDs: []string{entry.ID},
		})
		testutil.AssertNoError(t, err)

		_, err = teSvc.UpdateTimeEntry(user.ID, entry.ID, TimeEntryUpdateFields{
			Description: strPtr("edited"),
		})
		testutil.AssertAppError(t, err, "TIME_ENTRY_BILLED")
	})

	t.Run("rederives_duration_on_time_change", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)

		entry, err := teSvc.CreateTimeEntry(user.ID, TimeEntryInput{
			ProjectID: project.ID,
			StartTime: "09:00",
			EndTime:   "10:00",
		})
		testutil.AssertNoError(t, err)

		updated, err := teSvc.UpdateTimeEntry(user.ID, entry.ID, TimeEntryUpdateFields{
			EndTime: strPtr("11:30"),
		})
		testutil.AssertNoError(t, err)
		if updated.Duration != 150 {
			t.Errorf("expected re-derived duration 150, got %d", updated.Duration)
		}
	})

	t.Run("no_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)
		entry := testutil.CreateTestTimeEntry(t, db, user.ID, project.ID, 60)

		_, err := teSvc.UpdateTimeEntry(user.ID, entry.ID, TimeEntryUpdateFields{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteTimeEntry(t *testing.T) {
	t.Run("billed_entry_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)
		other := testutil.CreateTestInvoice(t, db, user.ID, client.ID)
		entry := testutil.CreateTestTimeEntry(t, db, user.ID, project.ID, 60)
		testutil.AssertNoError(t, db.Model(&models.TimeEntry{}).Where("id = ?", entry.ID).
			Updates(map[string]interface{}{"is_billed": true, "invoice_id": other.ID}).Error)

		err := teSvc.DeleteTimeEntry(user.ID, entry.ID)
		testutil.AssertAppError(t, err, "TIME_ENTRY_BILLED")
	})

	t.Run("unbilled_entry_deleted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)
		entry := testutil.CreateTestTimeEntry(t, db, user.ID, project.ID, 60)

		testutil.AssertNoError(t, teSvc.DeleteTimeEntry(user.ID, entry.ID))

		_, err := teSvc.GetTimeEntryByID(user.ID, entry.ID)
		testutil.AssertAppError(t, err, "TIME_ENTRY_NOT_FOUND")
	})
}

func TestGetUserTimeEntries(t *testing.T) {
	t.Run("billed_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)
		other := testutil.CreateTestInvoice(t, db, user.ID, client.ID)

		testutil.CreateTestTimeEntry(t, db, user.ID, project.ID, 60)
		billed := testutil.CreateTestTimeEntry(t, db, user.ID, project.ID, 90)
		testutil.AssertNoError(t, db.Model(&models.TimeEntry{}).Where("id = ?", billed.ID).
			Updates(map[string]interface{}{"is_billed": true, "invoice_id": other.ID}).Error)

		result, err := teSvc.GetUserTimeEntries(user.ID, pagination.PageRequest{}, TimeEntryFilter{
			IsBilled: boolPtr(false),
		})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 unbilled entry, got %d", result.TotalItems)
		}
	})

	t.Run("date_range_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)

		old := testutil.CreateTestTimeEntry(t, db, user.ID, project.ID, 60)
		testutil.AssertNoError(t, db.Model(&models.TimeEntry{}).Where("id = ?", old.ID).
			Update("date", time.Now().Add(-30*24*time.Hour)).Error)
		testutil.CreateTestTimeEntry(t, db, user.ID, project.ID, 90)

		start := time.Now().Add(-7 * 24 * time.Hour)
		result, err := teSvc.GetUserTimeEntries(user.ID, pagination.PageRequest{}, TimeEntryFilter{
			StartDate: &start,
		})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 recent entry, got %d", result.TotalItems)
		}
	})
}

func TestTimer(t *testing.T) {
	t.Run("start_and_stop", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)

		entry, err := teSvc.StartTimer(user.ID, project.ID, "debugging")
		testutil.AssertNoError(t, err)
		if entry.StartTime == "" {
			t.Fatal("expected start time to be stamped")
		}
		if entry.EndTime != "" {
			t.Fatal("running timer should have no end time")
		}

		stopped, err := teSvc.StopTimer(user.ID, entry.ID)
		testutil.AssertNoError(t, err)
		if stopped.EndTime == "" {
			t.Error("expected end time to be stamped")
		}
		if stopped.Duration < 0 {
			t.Errorf("expected non-negative duration, got %d", stopped.Duration)
		}
	})

	t.Run("stop_without_running_timer", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)

		// An entry created without clock times has no timer to stop.
		entry := testutil.CreateTestTimeEntry(t, db, user.ID, project.ID, 60)
		_, err := teSvc.StopTimer(user.ID, entry.ID)
		testutil.AssertAppError(t, err, "TIMER_NOT_RUNNING")
	})

	t.Run("stop_twice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		teSvc := NewTimeEntryService(db, NewProjectService(db, NewClientService(db)))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)

		entry, err := teSvc.StartTimer(user.ID, project.ID, "")
		testutil.AssertNoError(t, err)
		_, err = teSvc.StopTimer(user.ID, entry.ID)
		testutil.AssertNoError(t, err)

		_, err = teSvc.StopTimer(user.ID, entry.ID)
		testutil.AssertAppError(t, err, "TIMER_NOT_RUNNING")
	})
}
