package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/tqlx/internal/models"
	tu "github.com/desertthunder/tqlx/internal/testing"
)

func sampleConnectors() []models.Connector {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []models.Connector{
		{ID: 1, Name: "MySQL", Type: "MYSQL", Status: "ACTIVE", CreatedAt: created, UpdatedAt: created},
		{ID: 2, Name: "Postgres-Prod", Type: "POSTGRES", Status: "ACTIVE", CreatedAt: created, UpdatedAt: created},
		{ID: 3, Name: "postgres-staging", Type: "POSTGRES", Status: "ACTIVE"},
	}
}

func TestConnectors(t *testing.T) {
	t.Run("GetConnectors", func(t *testing.T) {
		fake := tu.NewFakeService(t)
		fake.Connectors = sampleConnectors()

		resp, err := newTestClient(t, fake.URL(), nil).GetConnectors(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(resp.Connectors) != 3 {
			t.Fatalf("expected 3 connectors, got %d", len(resp.Connectors))
		}
		if !resp.Connectors[1].CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
			t.Errorf("expected timestamps to decode, got %v", resp.Connectors[1].CreatedAt)
		}
	})

	t.Run("ListConnectors Keeps Service Order", func(t *testing.T) {
		fake := tu.NewFakeService(t)
		fake.Connectors = sampleConnectors()

		connectors, err := newTestClient(t, fake.URL(), nil).ListConnectors(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		for i, want := range []int{1, 2, 3} {
			if connectors[i].ID != want {
				t.Errorf("position %d: expected id %d, got %d", i, want, connectors[i].ID)
			}
		}
	})

	t.Run("ListConnectors Failure", func(t *testing.T) {
		fake := tu.NewFakeService(t)
		fake.Fail("GetConnectors", http.StatusUnauthorized, `{"code":"unauthenticated","message":"bad key"}`)

		_, err := newTestClient(t, fake.URL(), nil).ListConnectors(context.Background())

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "bad key" {
			t.Errorf("expected listing error, got %v", err)
		}
	})

	t.Run("FindConnectorByName", func(t *testing.T) {
		t.Run("Case-Insensitive Substring Match", func(t *testing.T) {
			fake := tu.NewFakeService(t)
			fake.Connectors = []models.Connector{{ID: 2, Name: "Postgres-Prod"}, {ID: 1, Name: "MySQL"}}

			connector, err := newTestClient(t, fake.URL(), nil).FindConnectorByName(context.Background(), "postgres")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if connector == nil || connector.Name != "Postgres-Prod" {
				t.Errorf("expected Postgres-Prod, got %+v", connector)
			}
		})

		t.Run("First Match Wins", func(t *testing.T) {
			fake := tu.NewFakeService(t)
			fake.Connectors = sampleConnectors()

			connector, err := newTestClient(t, fake.URL(), nil).FindConnectorByName(context.Background(), "POSTGRES")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if connector == nil || connector.ID != 2 {
				t.Errorf("expected first match (id 2), got %+v", connector)
			}
		})

		t.Run("No Match Is Nil Without Error", func(t *testing.T) {
			fake := tu.NewFakeService(t)
			fake.Connectors = sampleConnectors()

			connector, err := newTestClient(t, fake.URL(), nil).FindConnectorByName(context.Background(), "snowflake")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if connector != nil {
				t.Errorf("expected nil, got %+v", connector)
			}
		})

		t.Run("Listing Failure Is Returned", func(t *testing.T) {
			fake := tu.NewFakeService(t)
			fake.Fail("GetConnectors", http.StatusInternalServerError, "")

			connector, err := newTestClient(t, fake.URL(), nil).FindConnectorByName(context.Background(), "postgres")
			if err == nil {
				t.Fatal("expected an error when listing fails")
			}
			if connector != nil {
				t.Errorf("expected nil connector, got %+v", connector)
			}
		})
	})
}

func TestMatchConnector(t *testing.T) {
	connectors := sampleConnectors()

	tt := []struct {
		name   string
		query  string
		wantID int
	}{
		{name: "exact", query: "MySQL", wantID: 1},
		{name: "lower case", query: "mysql", wantID: 1},
		{name: "infix", query: "prod", wantID: 2},
		{name: "padded", query: "  staging ", wantID: 3},
		{name: "no match", query: "oracle", wantID: 0},
		{name: "blank", query: "   ", wantID: 0},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := MatchConnector(connectors, tc.query)
			if tc.wantID == 0 {
				if got != nil {
					t.Errorf("expected nil, got %+v", got)
				}
				return
			}
			if got == nil || got.ID != tc.wantID {
				t.Errorf("expected id %d, got %+v", tc.wantID, got)
			}
		})
	}

	if MatchConnector(nil, "x") != nil {
		t.Error("expected nil for empty list")
	}
}
