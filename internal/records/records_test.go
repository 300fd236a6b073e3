package records

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/ednavoyage/internal/clock"
	"github.com/vk/ednavoyage/internal/inmemorystore"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("t%02d", n)
	}
}

func testOptions() (*clock.Fake, []Option) {
	fc := clock.NewFake(epoch)
	return fc, []Option{WithClock(fc), WithIDGenerator(sequentialIDs())}
}

func TestUsers_SignupStartsSession(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	_, opts := testOptions()
	users := NewUsers(inmemorystore.New(), opts...)

	// --- Act ---
	u, err := users.Signup(ctx, Profile{Email: " ada@example.org ", Name: "Ada"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "user-t01", u.ID)
	assert.Equal(t, "ada@example.org", u.Email)
	assert.Equal(t, RoleResearcher, u.Role)
	assert.Equal(t, epoch, u.CreatedAt)

	current, ok := users.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, u, current)
	assert.Len(t, users.List(ctx), 1)
}

func TestUsers_SignupRejects(t *testing.T) {
	ctx := context.Background()
	_, opts := testOptions()
	users := NewUsers(inmemorystore.New(), opts...)
	_, err := users.Signup(ctx, Profile{Email: "ada@example.org", Name: "Ada"})
	require.NoError(t, err)

	testCases := []struct {
		name    string
		profile Profile
		wantErr error
	}{
		{"duplicate email", Profile{Email: "ada@example.org", Name: "Other"}, ErrEmailTaken},
		{"missing email", Profile{Name: "Nobody"}, ErrMissingField},
		{"missing name", Profile{Email: "x@example.org"}, ErrMissingField},
		{"unknown role", Profile{Email: "y@example.org", Name: "Y", Role: "pirate"}, ErrInvalidValue},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := users.Signup(ctx, tc.profile)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
	assert.Len(t, users.List(ctx), 1)
}

func TestUsers_LoginLogout(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	fc, opts := testOptions()
	users := NewUsers(inmemorystore.New(), opts...)
	signed, err := users.Signup(ctx, Profile{Email: "ada@example.org", Name: "Ada", Role: RoleStudent})
	require.NoError(t, err)
	require.NoError(t, users.Logout(ctx))
	_, ok := users.Current(ctx)
	require.False(t, ok)

	// --- Act ---
	fc.Advance(time.Hour)
	u, err := users.Login(ctx, "ada@example.org")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, signed.ID, u.ID)
	assert.Equal(t, epoch.Add(time.Hour), u.LastLogin)
	// the account list keeps the signup time
	assert.Equal(t, epoch, users.List(ctx)[0].LastLogin)

	_, err = users.Login(ctx, "nobody@example.org")
	require.ErrorIs(t, err, ErrUnknownUser)
}

func TestUsers_LogoutWithoutSession(t *testing.T) {
	users := NewUsers(inmemorystore.New())
	require.NoError(t, users.Logout(context.Background()))
}

func TestUsers_UpdateProfile(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	_, opts := testOptions()
	users := NewUsers(inmemorystore.New(), opts...)

	_, err := users.UpdateProfile(ctx, ProfileUpdate{})
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = users.Signup(ctx, Profile{Email: "ada@example.org", Name: "Ada"})
	require.NoError(t, err)
	bio := "Deep sea sampling"
	role := RoleInstitution

	// --- Act ---
	u, err := users.UpdateProfile(ctx, ProfileUpdate{Bio: &bio, Role: &role})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, bio, u.Bio)
	assert.Equal(t, RoleInstitution, u.Role)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, bio, users.List(ctx)[0].Bio)

	bad := Role("pirate")
	_, err = users.UpdateProfile(ctx, ProfileUpdate{Role: &bad})
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestAnalysis_FileLifecycle(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	a := NewAnalysis(inmemorystore.New())
	require.NoError(t, a.AddUploadedFile(ctx, UploadedFile{ID: "f1", Name: "sample.fasta", Size: "0.01 MB"}))
	require.NoError(t, a.AddUploadedFile(ctx, UploadedFile{ID: "f2", Name: "reads.fastq"}))
	require.NoError(t, a.AddAnalysisResult(ctx, AnalysisResult{ID: ResultID("f1"), FileName: "sample.fasta", Status: StatusComplete}))
	require.NoError(t, a.AddAnalysisResult(ctx, AnalysisResult{ID: ResultID("f2"), FileName: "reads.fastq"}))

	// --- Act ---
	progress := 100.0
	f, err := a.UpdateUploadedFile(ctx, "f1", FileUpdate{UploadProgress: &progress})
	require.NoError(t, err)
	err = a.RemoveUploadedFile(ctx, "f2")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 100.0, f.UploadProgress)

	files := a.Files(ctx)
	require.Len(t, files, 1)
	assert.Equal(t, "f1", files[0].ID)

	results := a.Results(ctx)
	require.Len(t, results, 1)
	assert.Equal(t, "result-f1", results[0].ID)

	require.ErrorIs(t, a.RemoveUploadedFile(ctx, "f2"), ErrNotFound)
	_, err = a.UpdateUploadedFile(ctx, "missing", FileUpdate{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAnalysis_UpdateResultAndClear(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	a := NewAnalysis(inmemorystore.New())
	require.NoError(t, a.AddAnalysisResult(ctx, AnalysisResult{ID: "result-f1", Status: StatusProcessing}))
	status := StatusComplete
	species := "Bathynomus giganteus"

	// --- Act ---
	r, err := a.UpdateAnalysisResult(ctx, "result-f1", ResultUpdate{Status: &status, Species: &species})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, r.Status)
	got, ok := a.Result(ctx, "result-f1")
	require.True(t, ok)
	assert.Equal(t, species, got.Species)

	bad := ResultStatus("lost")
	_, err = a.UpdateAnalysisResult(ctx, "result-f1", ResultUpdate{Status: &bad})
	require.ErrorIs(t, err, ErrInvalidValue)
	require.ErrorIs(t, a.AddUploadedFile(ctx, UploadedFile{Name: "no-id"}), ErrMissingField)

	require.NoError(t, a.ClearAll(ctx))
	assert.Empty(t, a.Files(ctx))
	assert.Empty(t, a.Results(ctx))
}

func TestSeedProjects(t *testing.T) {
	seeds := SeedProjects()

	require.Len(t, seeds, 4)
	assert.Equal(t, "proj-001", seeds[0].ID)
	assert.Equal(t, "Mariana Trench Biodiversity Survey", seeds[0].Name)
	assert.Equal(t, []string{"Deep Sea", "Hadal Zone", "Extremophiles"}, seeds[0].Tags)
	assert.Equal(t, ProjectStatusDraft, seeds[3].Status)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), seeds[1].UpdatedAt)
	assert.NotNil(t, seeds[2].RelatedFiles)
}

func TestParseSeedProjects_Rejects(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"not a list", "id: proj-1"},
		{"missing name", "- id: proj-1\n  status: active"},
		{"bad status", "- id: proj-1\n  name: X\n  status: paused"},
		{"bad time", "- id: proj-1\n  name: X\n  status: active\n  createdAt: yesterday"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSeedProjects([]byte(tc.yaml))
			require.Error(t, err)
		})
	}
}

func TestProjects_ListMergesSeeds(t *testing.T) {
	ctx := context.Background()
	_, opts := testOptions()
	p := NewProjects(inmemorystore.New(), nil, opts...)

	list := p.List(ctx)

	require.Len(t, list, 4)
	assert.Equal(t, "proj-001", list[0].ID)
}

func TestProjects_AddUpdateDelete(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	fc, opts := testOptions()
	store := inmemorystore.New()
	p := NewProjects(store, nil, opts...)

	// --- Act ---
	added, err := p.Add(ctx, ProjectDraft{Name: "Kelp Forest Census", Samples: 3})
	require.NoError(t, err)

	fc.Advance(time.Minute)
	status := ProjectStatusActive
	updated, err := p.Update(ctx, added.ID, ProjectUpdate{Status: &status, Tags: []string{"Kelp"}})
	require.NoError(t, err)

	require.NoError(t, p.Delete(ctx, "proj-002"))

	// --- Assert ---
	assert.Equal(t, "proj-t01", added.ID)
	assert.Equal(t, ProjectStatusDraft, added.Status)
	assert.Equal(t, ProjectStatusActive, updated.Status)
	assert.Equal(t, epoch, updated.CreatedAt)
	assert.Equal(t, epoch.Add(time.Minute), updated.UpdatedAt)

	list := p.List(ctx)
	ids := make([]string, len(list))
	for i, pr := range list {
		ids[i] = pr.ID
	}
	assert.Equal(t, []string{added.ID, "proj-001", "proj-003", "proj-004"}, ids)

	// a fresh service over the same store sees the same list
	again := NewProjects(store, nil, opts...)
	assert.Len(t, again.List(ctx), 4)
	_, ok := again.Get(ctx, "proj-002")
	assert.False(t, ok)

	require.ErrorIs(t, p.Delete(ctx, "proj-002"), ErrNotFound)
	_, err = p.Update(ctx, "missing", ProjectUpdate{})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = p.Add(ctx, ProjectDraft{Name: "  "})
	require.ErrorIs(t, err, ErrMissingField)
}
