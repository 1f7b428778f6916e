//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hotel_recommender/internal/adapters/csvsource"
	httpserver "hotel_recommender/internal/adapters/http_server"
	redisad "hotel_recommender/internal/adapters/redis"
	"hotel_recommender/internal/app"
	"hotel_recommender/internal/domain"
	mysqlrepo "hotel_recommender/internal/storage/mysql"
)

// ---------- helpers ----------
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

const bookingsCSV = `hotel,is_canceled,lead_time,arrival_date_year,arrival_date_month,arrival_date_day_of_month,stays_in_weekend_nights,stays_in_week_nights,adults,children,babies,meal,country,market_segment,distribution_channel,is_repeated_guest,previous_cancellations,previous_bookings_not_canceled,reserved_room_type,assigned_room_type,booking_changes,deposit_type,agent,company,days_in_waiting_list,customer_type,adr,required_car_parking_spaces,total_of_special_requests,reservation_status
City Hotel,0,30,2016,June,10,2,3,2,0,0,BB,PRT,Online TA,TA/TO,0,0,0,A,A,0,No Deposit,9,NULL,0,Transient,80,0,0,Check-Out
City Hotel,0,30,2016,June,10,2,3,2,0,0,BB,PRT,Online TA,TA/TO,0,0,0,A,A,0,No Deposit,9,NULL,0,Transient,120,0,0,Check-Out
City Hotel,0,30,2016,June,10,2,3,2,0,0,BB,PRT,Online TA,TA/TO,0,0,0,A,A,0,No Deposit,9,NULL,0,Transient,200,0,0,Check-Out
Resort Hotel,1,150,2017,January,3,1,0,1,NA,0,HB,,Online TA,TA/TO,1,1,0,D,E,2,Non Refund,NULL,45,10,Transient,55.5,1,2,Canceled
`

// ---------- the test ----------
func TestHTTP_EndToEnd_ImportTrainRecommend(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotelrec",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "hotelrec")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	ctx := context.Background()
	repo := mysqlrepo.New(db)

	// 1) import the CSV into MySQL
	csvPath := filepath.Join(t.TempDir(), "hotel_bookings.csv")
	if err := os.WriteFile(csvPath, []byte(bookingsCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	rep, err := app.NewImportService(repo, 2, 3).Import(ctx, csvsource.New(csvPath))
	if err != nil || rep.Rows != 4 || rep.Batches != 2 {
		t.Fatalf("import: %+v, %v", rep, err)
	}

	// 2) train from the table, store the model next to it
	m, err := app.NewTrainingService(repo).Train(ctx, repo)
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	// 3) serve it, with a redis cache in front
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	recs := app.NewRecommendationService(repo, cache, time.Minute, 3, 10)
	if err := recs.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}

	srv := httpserver.New(httpserver.Options{})
	srv.MountHandlers(&httpserver.Handlers{Recs: recs})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	body := []byte(`{"user_id":"e2e","preferences":{"budget":118,"adults":2,"arrival_month":6,"lead_time":30,"weekend_nights":2,"week_nights":3,"trip_type":"leisure"}}`)
	for i := 0; i < 2; i++ {
		resp, err := http.Post(ts.URL+"/v1/recommendations", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		var out domain.RecommendationResult
		_ = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d", resp.StatusCode)
		}
		if out.ModelID != m.ID || out.Count != 3 {
			t.Fatalf("unexpected envelope: %+v", out)
		}
		if out.Recommendations[0].Price != 120 || !strings.HasPrefix(out.Recommendations[0].Name, "City") {
			t.Fatalf("expected the 120 City Hotel stay first: %+v", out.Recommendations)
		}
	}
	if keys := mr.Keys(); len(keys) != 1 || !strings.HasPrefix(keys[0], "recs:"+m.ID+":") {
		t.Fatalf("expected one cached entry for the model, got %v", keys)
	}
}
