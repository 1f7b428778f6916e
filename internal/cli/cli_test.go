package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_recommender/internal/domain"
	"hotel_recommender/internal/shared"
)

const testCSV = "hotel,lead_time,arrival_date_year,arrival_date_month,arrival_date_day_of_month," +
	"stays_in_weekend_nights,stays_in_week_nights,adults,children,babies,country,market_segment," +
	"distribution_channel,customer_type,is_repeated_guest,previous_cancellations," +
	"previous_bookings_not_canceled,booking_changes,days_in_waiting_list,adr," +
	"required_car_parking_spaces,total_of_special_requests\n" +
	"City Hotel,30,2016,June,10,2,3,2,0,0,PRT,Online TA,TA/TO,Transient,0,0,0,0,0,80,0,0\n" +
	"City Hotel,30,2016,June,10,2,3,2,0,0,PRT,Online TA,TA/TO,Transient,0,0,0,0,0,120,0,0\n" +
	"City Hotel,30,2016,June,10,2,3,2,0,0,PRT,Online TA,TA/TO,Transient,0,0,0,0,0,200,0,0\n"

// resetFlags undoes flag state left by a previous Execute.
func resetFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(trainCmd, importCmd, recommendCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "hotel_bookings.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(testCSV), 0o600))
	t.Setenv("MODEL_STORE", "file")
	t.Setenv("MODEL_PATH", filepath.Join(dir, "model.json"))
	t.Setenv("CSV_PATH", csvPath)
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"train", "import", "recommend"} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestRecommendCmd_Flags(t *testing.T) {
	flag := recommendCmd.Flags().Lookup("count")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
	assert.NotNil(t, recommendCmd.Flags().Lookup("budget"))
	assert.NotNil(t, recommendCmd.Flags().Lookup("trip-type"))
}

func TestTrainThenRecommend(t *testing.T) {
	setupWorkspace(t)

	out, err := run(t, "train")
	require.NoError(t, err)
	assert.Contains(t, out, "trained on 3 bookings")
	assert.Contains(t, out, "23 features")

	out, err = run(t, "recommend", "--budget", "118", "-k", "2", "--user-id", "cli", "--json")
	require.NoError(t, err)

	var res domain.RecommendationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "cli", res.UserID)
	assert.Equal(t, "success", res.Status)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, 120.0, res.Recommendations[0].Price)

	out, err = run(t, "recommend")
	require.NoError(t, err)
	assert.Contains(t, out, "Recommendations for")
	assert.Contains(t, out, "City Hotel, PRT")
}

func TestRecommend_FromWrappedFile(t *testing.T) {
	dir := setupWorkspace(t)
	_, err := run(t, "train")
	require.NoError(t, err)

	path := filepath.Join(dir, "temp_preferences.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"user_id":"from-file","preferences":{"budget":118,"trip_type":"business"}}`), 0o600))

	out, err := run(t, "recommend", "--file", path, "--json", "-k", "1")
	require.NoError(t, err)
	var res domain.RecommendationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "from-file", res.UserID)
	assert.Equal(t, 1, res.Count)
}

func TestRecommend_FileErrors(t *testing.T) {
	dir := setupWorkspace(t)

	_, err := readPreferenceFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, domain.ErrInputNotFound)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"budget":`), 0o600))
	_, err = readPreferenceFile(bad)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	bare := filepath.Join(dir, "bare.json")
	require.NoError(t, os.WriteFile(bare, []byte(`{"adults":3,"arrival_month":12}`), 0o600))
	req, err := readPreferenceFile(bare)
	require.NoError(t, err)
	require.NotNil(t, req.Preference.Adults)
	assert.Equal(t, 3, *req.Preference.Adults)
	assert.Equal(t, 12, *req.Preference.ArrivalMonth)
}

func TestRecommend_WithoutModel(t *testing.T) {
	setupWorkspace(t)
	_, err := run(t, "recommend")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModelNotFitted)
	assert.Contains(t, err.Error(), "hotelrec train")
}

func TestRecommend_InvalidMonth(t *testing.T) {
	setupWorkspace(t)
	_, err := run(t, "train")
	require.NoError(t, err)

	_, err = run(t, "recommend", "--month", "13")
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestTrain_UnknownSource(t *testing.T) {
	setupWorkspace(t)
	_, err := run(t, "train", "--source", "ftp")
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestTrain_MissingCSV(t *testing.T) {
	dir := setupWorkspace(t)
	_, err := run(t, "train", "--csv", filepath.Join(dir, "nope.csv"))
	assert.ErrorIs(t, err, domain.ErrInputNotFound)
}

// ---- import with a fake repository ----

type fakeRepo struct {
	mu   sync.Mutex
	rows map[int64]domain.BookingRecord
}

func (f *fakeRepo) LoadBookings(ctx context.Context) ([]domain.BookingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]domain.BookingRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.rows[id])
	}
	return out, nil
}
func (f *fakeRepo) UpsertBookings(ctx context.Context, start int64, rs []domain.BookingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		f.rows = map[int64]domain.BookingRecord{}
	}
	for i, r := range rs {
		f.rows[start+int64(i)] = r
	}
	return nil
}
func (f *fakeRepo) TrimBookings(ctx context.Context, n int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var gone int64
	for id := range f.rows {
		if id >= n {
			delete(f.rows, id)
			gone++
		}
	}
	return gone, nil
}
func (f *fakeRepo) CountBookings(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}
func (f *fakeRepo) SaveModel(ctx context.Context, m *domain.FittedModel) error { return nil }
func (f *fakeRepo) LoadModel(ctx context.Context) (*domain.FittedModel, error) {
	return nil, domain.ErrModelNotFitted
}

func TestImport_UsesRepository(t *testing.T) {
	setupWorkspace(t)
	repo := &fakeRepo{}
	prev := openRepo
	openRepo = func(ctx context.Context, c shared.Config) (repository, func(), error) {
		return repo, func() {}, nil
	}
	defer func() { openRepo = prev }()

	out, err := run(t, "import", "--batch", "2", "-w", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 rows in 2 batches (0 failed)")

	n, _ := repo.CountBookings(context.Background())
	assert.Equal(t, int64(3), n)

	// then train straight from the table
	_, err = run(t, "train", "--source", "mysql")
	require.NoError(t, err)
}
