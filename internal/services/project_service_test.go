package services

import (
	"testing"

	"billable/internal/models"
	"billable/internal/pagination"
	"billable/internal/testutil"
)

func TestCreateProject(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		projSvc := NewProjectService(db, NewClientService(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)

		project, err := projSvc.CreateProject(user.ID, client.ID, "Website", "Redesign", models.BudgetTypeHourly, 100, 0, "#ff0000")
		testutil.AssertNoError(t, err)
		if project.Status != models.ProjectStatusActive {
			t.Errorf("new projects should be active, got %s", project.Status)
		}
	})

	t.Run("default_budget_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		projSvc := NewProjectService(db, NewClientService(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)

		project, err := projSvc.CreateProject(user.ID, client.ID, "Website", "", "", 0, 0, "")
		testutil.AssertNoError(t, err)
		if project.BudgetType != models.BudgetTypeHourly {
			t.Errorf("expected hourly budget type, got %s", project.BudgetType)
		}
	})

	t.Run("foreign_client", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		projSvc := NewProjectService(db, NewClientService(db))
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user1.ID)

		_, err := projSvc.CreateProject(user2.ID, client.ID, "Website", "", models.BudgetTypeHourly, 100, 0, "")
		testutil.AssertAppError(t, err, "CLIENT_NOT_FOUND")
	})

	t.Run("missing_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		projSvc := NewProjectService(db, NewClientService(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)

		_, err := projSvc.CreateProject(user.ID, client.ID, "", "", models.BudgetTypeHourly, 100, 0, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserProjects(t *testing.T) {
	t.Run("status_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		projSvc := NewProjectService(db, NewClientService(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)

		testutil.CreateTestProject(t, db, user.ID, client.ID)
		done := testutil.CreateTestProject(t, db, user.ID, client.ID)
		status := models.ProjectStatusCompleted
		_, err := projSvc.UpdateProject(user.ID, done.ID, ProjectUpdateFields{Status: &status})
		testutil.AssertNoError(t, err)

		active := models.ProjectStatusActive
		result, err := projSvc.GetUserProjects(user.ID, pagination.PageRequest{}, ProjectFilter{Status: &active})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 active project, got %d", result.TotalItems)
		}
	})

	t.Run("client_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		projSvc := NewProjectService(db, NewClientService(db))
		user := testutil.CreateTestUser(t, db)
		client1 := testutil.CreateTestClient(t, db, user.ID)
		client2 := testutil.CreateTestClient(t, db, user.ID)
		testutil.CreateTestProject(t, db, user.ID, client1.ID)
		testutil.CreateTestProject(t, db, user.ID, client2.ID)

		result, err := projSvc.GetUserProjects(user.ID, pagination.PageRequest{}, ProjectFilter{ClientID: &client1.ID})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 project for client, got %d", result.TotalItems)
		}
	})
}

func TestDeleteProject(t *testing.T) {
	t.Run("deletes_project", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		projSvc := NewProjectService(db, NewClientService(db))
		user := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user.ID)
		project := testutil.CreateTestProject(t, db, user.ID, client.ID)

		testutil.AssertNoError(t, projSvc.DeleteProject(user.ID, project.ID))

		_, err := projSvc.GetProjectByID(user.ID, project.ID)
		testutil.AssertAppError(t, err, "PROJECT_NOT_FOUND")
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		projSvc := NewProjectService(db, NewClientService(db))
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		client := testutil.CreateTestClient(t, db, user1.ID)
		project := testutil.CreateTestProject(t, db, user1.ID, client.ID)

		err := projSvc.DeleteProject(user2.ID, project.ID)
		testutil.AssertAppError(t, err, "PROJECT_NOT_FOUND")
	})
}
