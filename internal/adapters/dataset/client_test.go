package dataset_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"hotel_recommender/internal/adapters/dataset"
	"hotel_recommender/internal/domain"
)

func TestClient_Fetch_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Header().Set("Content-Type", "text/csv")
			_, _ = io.WriteString(w, "hotel,adr\nCity Hotel,80\n")
		}
	}))
	defer ts.Close()

	cl := dataset.New(100)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	body, err := cl.Fetch(ctx, ts.URL+"/hotel_bookings.csv")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer body.Close()
	b, _ := io.ReadAll(body)
	if string(b) != "hotel,adr\nCity Hotel,80\n" {
		t.Fatalf("unexpected body %q", b)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Fetch_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl := dataset.New(100)
	_, err := cl.Fetch(context.Background(), ts.URL+"/missing.csv")
	if !errors.Is(err, domain.ErrInputNotFound) {
		t.Fatalf("want ErrInputNotFound, got %v", err)
	}
}

func TestClient_Fetch_BreakerOpens(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer ts.Close()

	cl := dataset.New(100)
	for i := 0; i < 3; i++ {
		if _, err := cl.Fetch(context.Background(), ts.URL); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	_, err := cl.Fetch(context.Background(), ts.URL)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("want open breaker, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("open breaker must not reach the server, hits=%d", got)
	}
}

func TestClient_Fetch_BadURL(t *testing.T) {
	cl := dataset.New(1)
	_, err := cl.Fetch(context.Background(), "not a url")
	if !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("want ErrInvalidParameter, got %v", err)
	}
}

func TestSource_LoadBookings(t *testing.T) {
	const csv = "hotel,lead_time,arrival_date_year,arrival_date_month,arrival_date_day_of_month," +
		"stays_in_weekend_nights,stays_in_week_nights,adults,children,babies,country,market_segment," +
		"distribution_channel,customer_type,is_repeated_guest,previous_cancellations," +
		"previous_bookings_not_canceled,booking_changes,days_in_waiting_list,adr," +
		"required_car_parking_spaces,total_of_special_requests\n" +
		"City Hotel,3,2016,July,1,0,2,2,0,0,PRT,Direct,Direct,Transient,0,0,0,0,0,75,0,0\n"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, csv)
	}))
	defer ts.Close()

	src := dataset.NewSource(dataset.New(100), ts.URL+"/bookings.csv")
	bs, err := src.LoadBookings(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(bs) != 1 || bs[0].ADR != 75 || bs[0].ArrivalMonth != "July" {
		t.Fatalf("unexpected rows: %+v", bs)
	}
}
