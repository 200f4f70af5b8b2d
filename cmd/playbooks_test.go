package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/tqlx/internal/models"
	"github.com/desertthunder/tqlx/internal/services"
	"github.com/desertthunder/tqlx/internal/shared"
)

var createArgs = []string{"create", "--id=weekly", "--prompt=SELECT 1", "--name=Weekly", "--emails=a@example.com, b@example.com"}

func withArgs(base []string, extra ...string) []string {
	return append(append([]string{}, base...), extra...)
}

func decodeUpdate(t *testing.T, body []byte) models.UpdatePlaybookRequest {
	t.Helper()
	var req models.UpdatePlaybookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("failed to decode update body: %v\n%s", err, body)
	}
	return req
}

func TestCreate(t *testing.T) {
	t.Run("Creates And Configures", func(t *testing.T) {
		h := newHarness(t, keyedSettings())

		if err := h.run(withArgs(createArgs, "--connector=7", "--cron=0 9 * * *")...); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		stored, ok := h.fake.Playbook("weekly")
		if !ok {
			t.Fatal("expected playbook on the service")
		}
		if stored.Name != "Weekly" || stored.Prompt != "SELECT 1" {
			t.Errorf("unexpected record %+v", stored)
		}
		if len(stored.EmailAddresses) != 2 || stored.EmailAddresses[1] != "b@example.com" {
			t.Errorf("expected trimmed emails in order, got %v", stored.EmailAddresses)
		}
		if stored.ParadigmOptions.ConnectorID != 7 || stored.CronString != "0 9 * * *" || stored.Status != models.StatusActive {
			t.Errorf("unexpected configuration %+v", stored)
		}

		out := h.out.String()
		if !strings.Contains(out, "Playbook weekly created") || !strings.Contains(out, "next run Mon 2026-03-02 09:00 UTC") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("Missing Fields Print Usage Without Network", func(t *testing.T) {
		h := newHarness(t, keyedSettings())

		err := h.run("create", "--id=weekly")

		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
		if !strings.Contains(err.Error(), "--prompt, --name, --emails") {
			t.Errorf("expected missing flags listed, got %v", err)
		}
		if !strings.Contains(h.errOut.String(), "Usage: tqlx create") {
			t.Errorf("expected usage, got %q", h.errOut.String())
		}
		if h.counter.Calls() != 0 {
			t.Errorf("expected no network calls, got %d", h.counter.Calls())
		}
	})

	t.Run("Blank Emails Count As Missing", func(t *testing.T) {
		h := newHarness(t, keyedSettings())

		err := h.run("create", "--id=w", "--prompt=SELECT 1", "--name=W", "--emails= , ", "--connector=1")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if h.counter.Calls() != 0 {
			t.Errorf("expected no network calls, got %d", h.counter.Calls())
		}
	})

	t.Run("No Connector Anywhere", func(t *testing.T) {
		h := newHarness(t, keyedSettings())

		err := h.run(createArgs...)
		if !errors.Is(err, shared.ErrNoConnector) {
			t.Errorf("expected ErrNoConnector, got %v", err)
		}
		if h.counter.Calls() != 0 {
			t.Errorf("expected no network calls, got %d", h.counter.Calls())
		}
	})

	t.Run("Connector Resolution", func(t *testing.T) {
		connectors := []models.Connector{{ID: 1, Name: "MySQL"}, {ID: 2, Name: "Postgres-Prod"}}

		t.Run("by name", func(t *testing.T) {
			h := newHarness(t, keyedSettings())
			h.fake.Connectors = connectors

			if err := h.run(withArgs(createArgs, "--connector-name=postgres")...); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			stored, _ := h.fake.Playbook("weekly")
			if stored.ParadigmOptions.ConnectorID != 2 {
				t.Errorf("expected Postgres-Prod (2), got %d", stored.ParadigmOptions.ConnectorID)
			}
		})

		t.Run("no match stops before create", func(t *testing.T) {
			h := newHarness(t, keyedSettings())
			h.fake.Connectors = connectors

			err := h.run(withArgs(createArgs, "--connector-name=snowflake")...)
			if !errors.Is(err, shared.ErrConnectorMatch) {
				t.Errorf("expected ErrConnectorMatch, got %v", err)
			}
			if h.fake.Calls("CreatePlaybook") != 0 {
				t.Error("create must not be attempted without a connector")
			}
		})

		t.Run("explicit id wins over name", func(t *testing.T) {
			h := newHarness(t, keyedSettings())
			h.fake.Connectors = connectors

			if err := h.run(withArgs(createArgs, "--connector=9", "--connector-name=postgres")...); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if h.fake.Calls("GetConnectors") != 0 {
				t.Error("expected no lookup when an id is given")
			}
			stored, _ := h.fake.Playbook("weekly")
			if stored.ParadigmOptions.ConnectorID != 9 {
				t.Errorf("expected 9, got %d", stored.ParadigmOptions.ConnectorID)
			}
		})

		t.Run("persisted default", func(t *testing.T) {
			h := newHarness(t, &shared.Settings{APIKey: "k", DefaultConnectorID: 5})

			if err := h.run(createArgs...); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			stored, _ := h.fake.Playbook("weekly")
			if stored.ParadigmOptions.ConnectorID != 5 {
				t.Errorf("expected 5, got %d", stored.ParadigmOptions.ConnectorID)
			}
		})
	})

	t.Run("Cron Defaults", func(t *testing.T) {
		t.Run("persisted", func(t *testing.T) {
			h := newHarness(t, &shared.Settings{APIKey: "k", DefaultConnectorID: 1, DefaultCronString: "0 9 * * *"})

			if err := h.run(createArgs...); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := decodeUpdate(t, h.fake.LastBody("UpdatePlaybook")).CronString; got != "0 9 * * *" {
				t.Errorf("expected persisted cron, got %q", got)
			}
		})

		t.Run("hardcoded", func(t *testing.T) {
			h := newHarness(t, &shared.Settings{APIKey: "k", DefaultConnectorID: 1})

			if err := h.run(createArgs...); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := decodeUpdate(t, h.fake.LastBody("UpdatePlaybook")).CronString; got != models.DefaultCronString {
				t.Errorf("expected %q, got %q", models.DefaultCronString, got)
			}
		})
	})

	t.Run("Status", func(t *testing.T) {
		h := newHarness(t, keyedSettings())

		if err := h.run(withArgs(createArgs, "--connector=1", "--status=inactive")...); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stored, _ := h.fake.Playbook("weekly"); stored.Status != models.StatusInactive {
			t.Errorf("expected INACTIVE, got %s", stored.Status)
		}

		err := h.run("create", "--id=other", "--prompt=SELECT 1", "--name=O", "--emails=a@example.com", "--connector=1", "--status=paused")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if h.fake.Calls("CreatePlaybook") != 1 {
			t.Error("invalid status must not reach the service")
		}
	})

	t.Run("Failed Create Skips Update", func(t *testing.T) {
		h := newHarness(t, keyedSettings())
		h.fake.Fail("CreatePlaybook", http.StatusConflict, `{"code":"already_exists","message":"playbook already exists"}`)

		err := h.run(withArgs(createArgs, "--connector=1")...)

		var apiErr *services.APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "playbook already exists" {
			t.Fatalf("expected service error, got %v", err)
		}
		if h.fake.Calls("UpdatePlaybook") != 0 {
			t.Error("update must not follow a failed create")
		}
	})

	t.Run("JSON Envelope", func(t *testing.T) {
		t.Run("success", func(t *testing.T) {
			h := newHarness(t, keyedSettings())

			if err := h.run(withArgs([]string{"--json"}, withArgs(createArgs, "--connector=3")...)...); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			var result services.Result[*models.Playbook]
			if err := json.Unmarshal(h.out.Bytes(), &result); err != nil {
				t.Fatalf("failed to decode envelope: %v\n%s", err, h.out.String())
			}
			if !result.Success || result.Data == nil || result.Data.ID != "pb_weekly" {
				t.Errorf("unexpected envelope %+v", result)
			}
		})

		t.Run("failure", func(t *testing.T) {
			h := newHarness(t, keyedSettings())
			h.fake.Fail("UpdatePlaybook", http.StatusBadRequest, "bad cron")

			err := h.run(withArgs([]string{"--json"}, withArgs(createArgs, "--connector=3")...)...)
			if err == nil {
				t.Fatal("expected error")
			}

			var result map[string]any
			if err := json.Unmarshal(h.out.Bytes(), &result); err != nil {
				t.Fatalf("failed to decode envelope: %v\n%s", err, h.out.String())
			}
			if result["success"] != false {
				t.Errorf("expected success=false, got %v", result["success"])
			}
			apiErr, _ := result["error"].(map[string]any)
			if apiErr["message"] != "bad cron" || apiErr["status"] != float64(400) {
				t.Errorf("unexpected error object %v", result["error"])
			}
			if _, ok := result["data"]; ok {
				t.Error("failure envelope must not carry data")
			}
		})
	})

	t.Run("Manifest", func(t *testing.T) {
		h := newHarness(t, keyedSettings())
		h.fake.Connectors = []models.Connector{{ID: 1, Name: "MySQL"}, {ID: 2, Name: "Postgres-Prod"}}

		path := filepath.Join(t.TempDir(), "playbook.toml")
		if err := os.WriteFile(path, shared.ExampleManifest(), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := h.run("create", "--file", path, "--name=From flag"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		stored, ok := h.fake.Playbook("weekly-revenue")
		if !ok {
			t.Fatal("expected manifest id to be used")
		}
		if stored.Name != "From flag" {
			t.Errorf("expected flag to win, got %q", stored.Name)
		}
		if stored.CronString != "0 9 * * 1" || stored.ParadigmOptions.ConnectorID != 2 {
			t.Errorf("expected manifest values, got %+v", stored)
		}
	})

	t.Run("Manifest With Blank Emails", func(t *testing.T) {
		h := newHarness(t, keyedSettings())

		path := filepath.Join(t.TempDir(), "playbook.toml")
		manifest := "id = \"blank\"\nname = \"Blank\"\nprompt = \"SELECT 1\"\nemails = [\"  \", \"\"]\nconnector_id = 7\n"
		if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
			t.Fatal(err)
		}

		err := h.run("create", "--file", path)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
		if !strings.Contains(err.Error(), "--emails") {
			t.Errorf("expected --emails to be reported missing, got %v", err)
		}
		if h.counter.Calls() != 0 {
			t.Errorf("expected no network calls, got %d", h.counter.Calls())
		}
		if _, ok := h.fake.Playbook("blank"); ok {
			t.Error("expected no playbook to be stored")
		}
	})

	t.Run("Manifest Emails Are Trimmed", func(t *testing.T) {
		h := newHarness(t, keyedSettings())

		path := filepath.Join(t.TempDir(), "playbook.toml")
		manifest := "id = \"trim\"\nname = \"Trim\"\nprompt = \"SELECT 1\"\nemails = [\" a@example.com \", \"\", \"b@example.com\"]\nconnector_id = 7\n"
		if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := h.run("create", "--file", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		stored, ok := h.fake.Playbook("trim")
		if !ok {
			t.Fatal("expected playbook to be stored")
		}
		if !slices.Equal(stored.EmailAddresses, []string{"a@example.com", "b@example.com"}) {
			t.Errorf("expected cleaned emails, got %q", stored.EmailAddresses)
		}
	})

	t.Run("Manifest With Unknown Keys", func(t *testing.T) {
		h := newHarness(t, keyedSettings())

		path := filepath.Join(t.TempDir(), "playbook.toml")
		if err := os.WriteFile(path, []byte("id = \"x\"\nschedule = \"daily\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := h.run("create", "--file", path); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
		if h.counter.Calls() != 0 {
			t.Errorf("expected no network calls, got %d", h.counter.Calls())
		}
	})
}

func TestUpdate(t *testing.T) {
	seed := func(t *testing.T, h *harness) {
		t.Helper()
		if err := h.run(withArgs(createArgs, "--connector=7")...); err != nil {
			t.Fatalf("failed to seed playbook: %v", err)
		}
		h.out.Reset()
		h.logs.Reset()
	}

	t.Run("Persisted Cron Is Submitted", func(t *testing.T) {
		h := newHarness(t, &shared.Settings{APIKey: "k", DefaultConnectorID: 3, DefaultCronString: "0 9 * * *"})
		seed(t, h)

		if err := h.run("update", "--id=weekly"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		req := decodeUpdate(t, h.fake.LastBody("UpdatePlaybook"))
		if req.CronString != "0 9 * * *" {
			t.Errorf("expected persisted cron, got %q", req.CronString)
		}
		if req.ParadigmOptions.ConnectorID != 3 {
			t.Errorf("expected persisted connector, got %d", req.ParadigmOptions.ConnectorID)
		}
	})

	t.Run("Only Id Required And Defaults Reported", func(t *testing.T) {
		h := newHarness(t, keyedSettings())
		seed(t, h)

		if err := h.run("update", "--id=weekly", "--cron=*/30 * * * *"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		req := decodeUpdate(t, h.fake.LastBody("UpdatePlaybook"))
		if req.Name != "weekly" {
			t.Errorf("expected name to default to id, got %q", req.Name)
		}
		if req.Prompt != "" || len(req.EmailAddresses) != 0 || req.Status != models.StatusActive {
			t.Errorf("expected hardcoded defaults, got %+v", req)
		}
		if req.ParadigmType != models.ParadigmSQL || req.TriggerType != models.TriggerCron {
			t.Errorf("expected SQL/CRON, got %s/%s", req.ParadigmType, req.TriggerType)
		}

		logs := h.logs.String()
		if !strings.Contains(logs, "unset fields use defaults") {
			t.Errorf("expected full-replace warning, got %q", logs)
		}
		if !strings.Contains(logs, "name,prompt,emails,status,connector") {
			t.Errorf("expected defaulted fields listed, got %q", logs)
		}
	})

	t.Run("Missing Id", func(t *testing.T) {
		h := newHarness(t, keyedSettings())

		err := h.run("update", "--name=x")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if h.counter.Calls() != 0 {
			t.Errorf("expected no network calls, got %d", h.counter.Calls())
		}
	})

	t.Run("Unknown Playbook", func(t *testing.T) {
		h := newHarness(t, keyedSettings())

		err := h.run("update", "--id=ghost", "--connector=1")

		var apiErr *services.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("Matches Composite Create", func(t *testing.T) {
		composite := newHarness(t, keyedSettings())
		if err := composite.run(withArgs(createArgs, "--connector=7", "--cron=0 6 * * *")...); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		manual := newHarness(t, keyedSettings())
		client, err := services.NewClient(services.ClientConfig{APIKey: "k", BaseURL: manual.fake.URL()})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := client.CreatePlaybook(t.Context(), "weekly"); err != nil {
			t.Fatalf("manual create failed: %v", err)
		}
		if err := manual.run("update", "--id=weekly", "--prompt=SELECT 1", "--name=Weekly",
			"--emails=a@example.com,b@example.com", "--connector=7", "--cron=0 6 * * *", "--status=ACTIVE"); err != nil {
			t.Fatalf("manual update failed: %v", err)
		}

		want, _ := composite.fake.Playbook("weekly")
		got, _ := manual.fake.Playbook("weekly")
		if want.Name != got.Name || want.Prompt != got.Prompt || want.CronString != got.CronString ||
			want.Status != got.Status || want.ParadigmOptions != got.ParadigmOptions ||
			strings.Join(want.EmailAddresses, ",") != strings.Join(got.EmailAddresses, ",") {
			t.Errorf("records differ:\ncomposite: %+v\nmanual:    %+v", want, got)
		}
	})
}
