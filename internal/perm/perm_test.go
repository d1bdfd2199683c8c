package perm

import (
	"math/rand"
	"reflect"
	"testing"

	"taskdash/internal/model"
)

func fixtureTasks() []model.Task {
	return []model.Task{
		{ID: "t1", Title: "Mine", OwnerID: "u1"},
		{ID: "t2", Title: "Theirs", OwnerID: "u2"},
	}
}

func TestVisible_UserSeesOnlyOwnTasks(t *testing.T) {
	user := model.Identity{UserID: "u1", Role: model.RoleUser}

	got := Visible(user, fixtureTasks())
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("expected only t1, got %+v", got)
	}
	if !CanManage(user, got[0]) {
		t.Fatalf("expected owner to manage own task")
	}
	if CanManage(user, fixtureTasks()[1]) {
		t.Fatalf("expected user to be denied on other's task")
	}
}

func TestVisible_AdminSeesEverythingAndMarksOthers(t *testing.T) {
	admin := model.Identity{UserID: "u1", Role: model.RoleAdmin}

	got := Visible(admin, fixtureTasks())
	if len(got) != 2 {
		t.Fatalf("expected both tasks, got %+v", got)
	}
	if OwnedByOther(admin, got[0]) {
		t.Fatalf("t1 is owned by the admin; no marker expected")
	}
	if !OwnedByOther(admin, got[1]) {
		t.Fatalf("t2 is owned by another user; marker expected")
	}
	for _, tk := range got {
		if !CanManage(admin, tk) {
			t.Fatalf("expected admin to manage %s", tk.ID)
		}
	}
}

func TestCanManage_EmptyUserIDNeverMatchesUnownedTasks(t *testing.T) {
	anon := model.Identity{Role: model.RoleUser}
	if CanManage(anon, model.Task{ID: "t", OwnerID: ""}) {
		t.Fatalf("expected empty user id to be denied")
	}
}

func TestVisible_MatchesDefinitionForRandomCollections(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	owners := []string{"u1", "u2", "u3"}
	for i := 0; i < 200; i++ {
		var tasks []model.Task
		n := r.Intn(12)
		for j := 0; j < n; j++ {
			tasks = append(tasks, model.Task{ID: string(rune('a' + j)), OwnerID: owners[r.Intn(len(owners))]})
		}
		id := model.Identity{UserID: owners[r.Intn(len(owners))], Role: model.RoleUser}
		if r.Intn(2) == 0 {
			id.Role = model.RoleAdmin
		}

		want := []model.Task{}
		for _, tk := range tasks {
			if id.Role == model.RoleAdmin || tk.OwnerID == id.UserID {
				want = append(want, tk)
			}
		}
		if got := Visible(id, tasks); !reflect.DeepEqual(got, want) {
			t.Fatalf("identity %+v: got %+v want %+v", id, got, want)
		}
	}
}
