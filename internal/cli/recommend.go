package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"hotel_recommender/internal/app"
	"hotel_recommender/internal/domain"
)

var (
	recFile   string
	recUserID string
	recK      int
	recJSON   bool

	recBudget          float64
	recAdults          int
	recChildren        int
	recBabies          int
	recLeadTime        int
	recMonth           int
	recWeekendNights   int
	recWeekNights      int
	recParking         int
	recSpecialRequests int
	recTripType        string
	recHotel           string
	recCountry         string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend similar stays for a preference",
	Long: `Loads the trained model and prints the k stays most similar to the
given preference. Preferences come from --file (a JSON object, optionally
wrapped as {"user_id": ..., "preferences": {...}}) and/or flags; flags win.
Anything left unset takes its documented default.`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	f := recommendCmd.Flags()
	f.StringVarP(&recFile, "file", "f", "", "preference JSON file")
	f.StringVar(&recUserID, "user-id", "", "user id echoed in the result")
	f.IntVarP(&recK, "count", "k", 0, "number of recommendations (default $DEFAULT_K)")
	f.BoolVar(&recJSON, "json", false, "output the result envelope as JSON")

	f.Float64Var(&recBudget, "budget", domain.DefaultBudget, "nightly budget")
	f.IntVar(&recAdults, "adults", domain.DefaultAdults, "adults")
	f.IntVar(&recChildren, "children", domain.DefaultChildren, "children")
	f.IntVar(&recBabies, "babies", domain.DefaultBabies, "babies")
	f.IntVar(&recLeadTime, "lead-time", domain.DefaultLeadTime, "days between booking and arrival")
	f.IntVar(&recMonth, "month", domain.DefaultArrivalMonth, "arrival month 1-12")
	f.IntVar(&recWeekendNights, "weekend-nights", domain.DefaultWeekendNights, "weekend nights")
	f.IntVar(&recWeekNights, "week-nights", domain.DefaultWeekNights, "week nights")
	f.IntVar(&recParking, "parking", domain.DefaultParking, "parking spaces required")
	f.IntVar(&recSpecialRequests, "special-requests", domain.DefaultSpecialRequest, "special requests")
	f.StringVar(&recTripType, "trip-type", domain.DefaultTripType, "leisure or business")
	f.StringVar(&recHotel, "hotel", "", "hotel type, e.g. \"City Hotel\"")
	f.StringVar(&recCountry, "country", "", "ISO country code")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var req app.RecommendRequest
	if cmd.Flags().Changed("count") {
		req.K = &recK
	}
	if recFile != "" {
		fromFile, err := readPreferenceFile(recFile)
		if err != nil {
			return err
		}
		req.UserID, req.Preference = fromFile.UserID, fromFile.Preference
	}
	if recUserID != "" {
		req.UserID = recUserID
	}
	applyPreferenceFlags(cmd, &req.Preference)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := app.NewRecommendationService(store, nil, 0, cfg.DefaultK, cfg.MaxK)
	if err := svc.Reload(ctx); err != nil {
		if errors.Is(err, domain.ErrModelNotFitted) {
			return fmt.Errorf("%w: run `hotelrec train` first", err)
		}
		return err
	}

	res, err := svc.Recommend(ctx, req)
	if err != nil {
		return fmt.Errorf("recommend failed: %w", err)
	}

	if recJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	outputRecommendations(cmd, res)
	return nil
}

// readPreferenceFile accepts a bare preference object or one wrapped with a
// user id.
func readPreferenceFile(path string) (app.RecommendRequest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return app.RecommendRequest{}, fmt.Errorf("%w: %s", domain.ErrInputNotFound, path)
		}
		return app.RecommendRequest{}, err
	}
	var wrapped struct {
		UserID      string                 `json:"user_id"`
		Preferences *domain.UserPreference `json:"preferences"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return app.RecommendRequest{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidParameter, path, err)
	}
	if wrapped.Preferences != nil {
		return app.RecommendRequest{UserID: wrapped.UserID, Preference: *wrapped.Preferences}, nil
	}
	var p domain.UserPreference
	if err := json.Unmarshal(b, &p); err != nil {
		return app.RecommendRequest{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidParameter, path, err)
	}
	return app.RecommendRequest{UserID: wrapped.UserID, Preference: p}, nil
}

// applyPreferenceFlags copies only the flags the user actually set, so
// unset ones stay nil and resolve to defaults.
func applyPreferenceFlags(cmd *cobra.Command, p *domain.UserPreference) {
	f := cmd.Flags()
	if f.Changed("budget") {
		p.Budget = &recBudget
	}
	ints := []struct {
		name string
		src  *int
		dst  **int
	}{
		{"adults", &recAdults, &p.Adults},
		{"children", &recChildren, &p.Children},
		{"babies", &recBabies, &p.Babies},
		{"lead-time", &recLeadTime, &p.LeadTime},
		{"month", &recMonth, &p.ArrivalMonth},
		{"weekend-nights", &recWeekendNights, &p.WeekendNights},
		{"week-nights", &recWeekNights, &p.WeekNights},
		{"parking", &recParking, &p.ParkingRequired},
		{"special-requests", &recSpecialRequests, &p.SpecialRequests},
	}
	for _, i := range ints {
		if f.Changed(i.name) {
			*i.dst = i.src
		}
	}
	if f.Changed("trip-type") {
		p.TripType = &recTripType
	}
	if f.Changed("hotel") {
		p.Hotel = &recHotel
	}
	if f.Changed("country") {
		p.Country = &recCountry
	}
}

func outputRecommendations(cmd *cobra.Command, res domain.RecommendationResult) {
	if res.Count == 0 {
		cmd.Println("No recommendations found.")
		return
	}
	cmd.Printf("Recommendations for %s (model %s):\n", res.UserID, res.ModelID)
	cmd.Println()
	for i, r := range res.Recommendations {
		cmd.Printf("  [%d] %s, %s (%.3f)\n", i+1, r.Name, r.Location, r.SimilarityScore)
		cmd.Printf("      id %s  price %.2f  guests %d  rating %.1f\n", r.HotelID, r.Price, r.Guests, r.Rating)
	}
}
