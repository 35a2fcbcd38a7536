package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/urban-guardians/backend/internal/models"
)

type MongoReportStore struct {
	client  *mongo.Client
	reports *mongo.Collection
	users   *mongo.Collection
}

func NewMongoReportStore(ctx context.Context, client *mongo.Client, db *mongo.Database) (*MongoReportStore, error) {
	reports := db.Collection("reports")
	users := db.Collection("users")

	// Best-effort indexes.
	_, _ = reports.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "location.city", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})

	log.Printf("MongoDB connected (reports): db=%s", db.Name())
	return &MongoReportStore{client: client, reports: reports, users: users}, nil
}

func (s *MongoReportStore) Create(userID string, req *models.CreateReportRequest) (*models.Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	images := req.Images
	if images == nil {
		images = []models.Image{}
	}
	for i := range images {
		if images[i].UploadedAt.IsZero() {
			images[i].UploadedAt = now
		}
	}

	report := &models.Report{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    priority,
		Status:      models.StatusPending,
		Location:    req.Location,
		Images:      images,
		UserID:      userID,
		Upvotes:     []models.Upvote{},
		Comments:    []models.Comment{},
		StatusHistory: []models.StatusChange{{
			Status:    models.StatusPending,
			ChangedBy: userID,
			Reason:    models.InitialSubmissionReason,
			ChangedAt: now,
		}},
		Metadata:    models.ReportMetadata{ReportedViaApp: true},
		Tags:        req.Tags,
		IsPublic:    true,
		IsAnonymous: req.IsAnonymous,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.reports.InsertOne(ctx, report); err != nil {
		return nil, err
	}

	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$inc": bson.M{
			"stats.total_reports":   1,
			"stats.pending_reports": 1,
		},
	}); err != nil {
		log.Printf("[MongoReportStore.Create] stats update failed for user %s: %v", userID, err)
	}

	return report, nil
}

func (s *MongoReportStore) GetByID(id string) (*models.Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res := s.reports.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"metadata.view_count": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var report models.Report
	if err := res.Decode(&report); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

func reportQuery(filter ReportFilter) bson.M {
	query := bson.M{}
	if filter.PublicOnly {
		query["is_public"] = true
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.City != "" {
		query["location.city"] = primitive.Regex{Pattern: "^" + filter.City + "$", Options: "i"}
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if len(filter.IDs) > 0 {
		query["_id"] = bson.M{"$in": filter.IDs}
	}
	return query
}

func (s *MongoReportStore) List(filter ReportFilter, page, limit int) ([]*models.Report, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := reportQuery(filter)

	total, err := s.reports.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	cur, err := s.reports.Find(
		ctx,
		query,
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetSkip(int64((page-1)*limit)).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	reports := make([]*models.Report, 0)
	for cur.Next(ctx) {
		var r models.Report
		if err := cur.Decode(&r); err != nil {
			return nil, 0, err
		}
		reports = append(reports, &r)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (s *MongoReportStore) ListByUser(userID string) ([]*models.Report, error) {
	reports, _, err := s.List(ReportFilter{UserID: userID}, 1, 500)
	return reports, err
}

func (s *MongoReportStore) ListAll() ([]*models.Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cur, err := s.reports.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	reports := make([]*models.Report, 0)
	for cur.Next(ctx) {
		var r models.Report
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		reports = append(reports, &r)
	}
	return reports, cur.Err()
}

func (s *MongoReportStore) Update(userID string, admin bool, reportID string, req *models.UpdateReportRequest) (*models.Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure report exists + ownership.
	var existing models.Report
	if err := s.reports.FindOne(ctx, bson.M{"_id": reportID}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if existing.UserID != userID && !admin {
		return nil, ErrUnauthorized
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Location != nil {
		set["location"] = *req.Location
	}
	if req.Images != nil {
		set["images"] = req.Images
	}
	if req.Tags != nil {
		set["tags"] = req.Tags
	}
	if req.IsPublic != nil {
		set["is_public"] = *req.IsPublic
	}

	res := s.reports.FindOneAndUpdate(
		ctx,
		bson.M{"_id": reportID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Report
	if err := res.Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MongoReportStore) Delete(userID string, admin bool, reportID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var existing models.Report
	if err := s.reports.FindOne(ctx, bson.M{"_id": reportID}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrReportNotFound
		}
		return err
	}
	if existing.UserID != userID && !admin {
		return ErrUnauthorized
	}

	_, err := s.reports.DeleteOne(ctx, bson.M{"_id": reportID})
	return err
}

func (s *MongoReportStore) DeleteByUser(userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := s.reports.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoReportStore) ToggleUpvote(reportID, userID string) (bool, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var report models.Report
	if err := s.reports.FindOne(ctx, bson.M{"_id": reportID}).Decode(&report); err != nil {
		if err == mongo.ErrNoDocuments {
			return false, 0, ErrReportNotFound
		}
		return false, 0, err
	}

	now := time.Now().UTC()
	added := !report.HasUpvoted(userID)

	var update bson.M
	if added {
		update = bson.M{
			"$push": bson.M{"upvotes": models.Upvote{UserID: userID, CreatedAt: now}},
			"$set":  bson.M{"updated_at": now},
		}
	} else {
		update = bson.M{
			"$pull": bson.M{"upvotes": bson.M{"user_id": userID}},
			"$set":  bson.M{"updated_at": now},
		}
	}

	res := s.reports.FindOneAndUpdate(
		ctx,
		bson.M{"_id": reportID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Report
	if err := res.Decode(&updated); err != nil {
		return false, 0, err
	}

	upvoteDelta := 1
	if !added {
		upvoteDelta = -1
	}
	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": updated.UserID}, bson.M{
		"$inc": bson.M{"stats.upvotes_received": upvoteDelta},
	}); err != nil {
		log.Printf("[MongoReportStore.ToggleUpvote] stats update failed for user %s: %v", updated.UserID, err)
	}

	return added, updated.UpvoteCount(), nil
}

func (s *MongoReportStore) AddComment(reportID, userID, text string) (*models.Comment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      text,
		CreatedAt: now,
	}

	res, err := s.reports.UpdateOne(
		ctx,
		bson.M{"_id": reportID},
		bson.M{
			"$push": bson.M{"comments": comment},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrReportNotFound
	}
	return &comment, nil
}

// UpdateStatus runs the report write and the owner's counter adjustment in
// one transaction so a crash between them cannot leave the cached stats out
// of sync with the report. Requires a replica set; see DESIGN.md.
func (s *MongoReportStore) UpdateStatus(reportID, actorID string, req *models.StatusUpdateRequest) (*models.Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	session, err := s.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var report models.Report
		if err := s.reports.FindOne(sc, bson.M{"_id": reportID}).Decode(&report); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrReportNotFound
			}
			return nil, err
		}

		now := time.Now().UTC()
		prev := report.Status
		statusChanged := req.Status != "" && req.Status != prev

		set := bson.M{"updated_at": now}
		update := bson.M{"$set": set}

		if statusChanged {
			if !models.CanTransition(prev, req.Status) {
				log.Printf("[MongoReportStore.UpdateStatus] non-canonical transition %s -> %s on %s (admin override)", prev, req.Status, reportID)
			}
			reason := req.Reason
			if reason == "" {
				reason = "Status changed to " + string(req.Status)
			}
			update["$push"] = bson.M{"status_history": models.StatusChange{
				Status:    req.Status,
				ChangedBy: actorID,
				Reason:    reason,
				ChangedAt: now,
			}}
			set["status"] = req.Status
			if req.Status == models.StatusResolved {
				set["resolution.resolved_at"] = now
				set["resolution.resolved_by"] = actorID
				if req.Reason != "" {
					set["resolution.notes"] = req.Reason
				}
			}
		}
		if req.AssignedTo != nil {
			set["assigned_to"] = *req.AssignedTo
		}
		if req.Priority != "" {
			set["priority"] = req.Priority
		}

		res := s.reports.FindOneAndUpdate(
			sc,
			bson.M{"_id": reportID},
			update,
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		var updated models.Report
		if err := res.Decode(&updated); err != nil {
			return nil, err
		}

		if statusChanged {
			if delta, civic, apply := statsForTransition(prev, req.Status); apply {
				inc := bson.M{
					"stats.resolved_reports": delta.ResolvedReports,
					"stats.pending_reports":  delta.PendingReports,
				}
				if civic != 0 {
					inc["civic_points"] = civic
				}
				if _, err := s.users.UpdateOne(sc, bson.M{"_id": updated.UserID}, bson.M{"$inc": inc}); err != nil {
					return nil, err
				}
			}
		}

		return &updated, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Report), nil
}

func (s *MongoReportStore) Count() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.reports.CountDocuments(ctx, bson.M{})
}
