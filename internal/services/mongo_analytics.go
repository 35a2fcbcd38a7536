package services

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/urban-guardians/backend/internal/models"
)

// MongoAnalyticsService composes aggregation pipelines over the reports and
// users collections.
type MongoAnalyticsService struct {
	reports *mongo.Collection
	users   *mongo.Collection
}

func NewMongoAnalyticsService(db *mongo.Database) *MongoAnalyticsService {
	return &MongoAnalyticsService{
		reports: db.Collection("reports"),
		users:   db.Collection("users"),
	}
}

func statusCond(status models.ReportStatus) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$status", status}}, 1, 0,
	}}}
}

func (s *MongoAnalyticsService) Overview() (*models.OverviewStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	totalUsers, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	citizens, err := s.users.CountDocuments(ctx, bson.M{"role": models.RoleCitizen})
	if err != nil {
		return nil, err
	}
	officials, err := s.users.CountDocuments(ctx, bson.M{"role": models.RoleOfficial})
	if err != nil {
		return nil, err
	}
	totalReports, err := s.reports.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	pending, err := s.reports.CountDocuments(ctx, bson.M{"status": models.StatusPending})
	if err != nil {
		return nil, err
	}
	inProgress, err := s.reports.CountDocuments(ctx, bson.M{"status": models.StatusInProgress})
	if err != nil {
		return nil, err
	}
	resolved, err := s.reports.CountDocuments(ctx, bson.M{"status": models.StatusResolved})
	if err != nil {
		return nil, err
	}

	return &models.OverviewStats{
		TotalUsers:        totalUsers,
		TotalCitizens:     citizens,
		TotalOfficials:    officials,
		TotalReports:      totalReports,
		PendingReports:    pending,
		InProgressReports: inProgress,
		ResolvedReports:   resolved,
		ResolutionRate:    resolutionRate(resolved, totalReports),
	}, nil
}

func (s *MongoAnalyticsService) ByCategory() ([]models.CategoryStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":         "$category",
			"total":       bson.M{"$sum": 1},
			"pending":     statusCond(models.StatusPending),
			"in_progress": statusCond(models.StatusInProgress),
			"resolved":    statusCond(models.StatusResolved),
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":         0,
			"category":    "$_id",
			"total":       1,
			"pending":     1,
			"in_progress": 1,
			"resolved":    1,
		}}},
		{{Key: "$sort", Value: bson.M{"total": -1}}},
	}

	cur, err := s.reports.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.CategoryStats, 0)
	for cur.Next(ctx) {
		var row models.CategoryStats
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		row.ResolutionRate = resolutionRate(row.Resolved, row.Total)
		out = append(out, row)
	}
	return out, cur.Err()
}

func (s *MongoAnalyticsService) ByLocation(groupBy string) ([]models.LocationStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	groupField := "$location.city"
	if groupBy == "state" {
		groupField = "$location.state"
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":         groupField,
			"total":       bson.M{"$sum": 1},
			"pending":     statusCond(models.StatusPending),
			"in_progress": statusCond(models.StatusInProgress),
			"resolved":    statusCond(models.StatusResolved),
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":         0,
			"location":    bson.M{"$ifNull": bson.A{"$_id", "Unknown"}},
			"total":       1,
			"pending":     1,
			"in_progress": 1,
			"resolved":    1,
		}}},
		{{Key: "$sort", Value: bson.M{"total": -1}}},
	}

	cur, err := s.reports.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.LocationStats, 0)
	for cur.Next(ctx) {
		var row models.LocationStats
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, cur.Err()
}

func (s *MongoAnalyticsService) Timeline(days int, interval string) ([]models.TimeBucket, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	// Bucket formats match the file implementation's keys.
	format := "%Y-%m-%d"
	switch interval {
	case "weekly":
		format = "%G-%V"
	case "monthly":
		format = "%Y-%m"
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": format,
				"date":   "$created_at",
			}},
			"total":    bson.M{"$sum": 1},
			"resolved": statusCond(models.StatusResolved),
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":      0,
			"bucket":   "$_id",
			"total":    1,
			"resolved": 1,
		}}},
		{{Key: "$sort", Value: bson.M{"bucket": 1}}},
	}

	cur, err := s.reports.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.TimeBucket, 0)
	for cur.Next(ctx) {
		var row models.TimeBucket
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, cur.Err()
}

func (s *MongoAnalyticsService) PriorityDistribution() ([]models.PriorityStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$priority",
			"total": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":      0,
			"priority": "$_id",
			"total":    1,
		}}},
		{{Key: "$sort", Value: bson.M{"total": -1}}},
	}

	cur, err := s.reports.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.PriorityStats, 0)
	for cur.Next(ctx) {
		var row models.PriorityStats
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, cur.Err()
}

func (s *MongoAnalyticsService) Engagement(limit int) ([]models.EngagementEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"title":      1,
			"category":   1,
			"view_count": "$metadata.view_count",
			"upvotes":    bson.M{"$size": bson.M{"$ifNull": bson.A{"$upvotes", bson.A{}}}},
			"comments":   bson.M{"$size": bson.M{"$ifNull": bson.A{"$comments", bson.A{}}}},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"engagement": bson.M{"$add": bson.A{"$upvotes", "$comments"}},
		}}},
		{{Key: "$sort", Value: bson.M{"engagement": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cur, err := s.reports.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.EngagementEntry, 0)
	for cur.Next(ctx) {
		var row struct {
			ID         string `bson:"_id"`
			Title      string `bson:"title"`
			Category   string `bson:"category"`
			Upvotes    int    `bson:"upvotes"`
			Comments   int    `bson:"comments"`
			Engagement int    `bson:"engagement"`
			ViewCount  int    `bson:"view_count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, models.EngagementEntry{
			ReportID:   row.ID,
			Title:      row.Title,
			Category:   row.Category,
			Upvotes:    row.Upvotes,
			Comments:   row.Comments,
			Engagement: row.Engagement,
			ViewCount:  row.ViewCount,
		})
	}
	return out, cur.Err()
}

func (s *MongoAnalyticsService) ResolutionTimes() (*models.ResolutionStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cur, err := s.reports.Find(ctx, bson.M{
		"status":                 models.StatusResolved,
		"resolution.resolved_at": bson.M{"$ne": nil},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	durations := make([]time.Duration, 0)
	for cur.Next(ctx) {
		var r models.Report
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		if r.Resolution.ResolvedAt != nil {
			durations = append(durations, r.Resolution.ResolvedAt.Sub(r.CreatedAt))
		}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return summarizeDurations(durations), nil
}

// summarizeDurations computes the resolution-time summary shared by both
// analytics implementations.
func summarizeDurations(durations []time.Duration) *models.ResolutionStats {
	stats := &models.ResolutionStats{ResolvedCount: int64(len(durations))}
	if len(durations) == 0 {
		return stats
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	stats.MinDuration = durations[0]
	stats.MaxDuration = durations[len(durations)-1]
	stats.AvgDuration = sum / time.Duration(len(durations))
	stats.AvgHours = stats.AvgDuration.Hours()
	return stats
}
