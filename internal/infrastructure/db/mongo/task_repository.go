package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

const collectionTasks = "tasks"

var errUnscopedFilter = errors.New("task filter has no owner")

// priority_rank lets the server sort LOW < MEDIUM < HIGH.
var priorityRank = map[domain.TaskPriority]int{
	domain.PriorityLow:    0,
	domain.PriorityMedium: 1,
	domain.PriorityHigh:   2,
}

var sortFields = map[string]string{
	ports.SortCreatedAt: "created_at",
	ports.SortDueDate:   "due_date",
	ports.SortPriority:  "priority_rank",
	ports.SortStatus:    "status",
	ports.SortTitle:     "title",
}

type TaskRepository struct {
	col *mongo.Collection
	ids *sequence
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		col: db.Collection(collectionTasks),
		ids: newSequence(db, collectionTasks),
	}
}

type taskDocument struct {
	domain.Task  `bson:",inline"`
	PriorityRank int  `bson:"priority_rank"`
	HasDueDate   bool `bson:"has_due_date"`
}

func toTaskDocument(t *domain.Task) taskDocument {
	return taskDocument{Task: *t, PriorityRank: priorityRank[t.Priority], HasDueDate: t.DueDate != nil}
}

// Create inserts a new task document and assigns its ID.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx)
	if err != nil {
		return err
	}
	t.ID = id
	if _, err := r.col.InsertOne(ctx, toTaskDocument(t)); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &doc.Task, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": t.ID}, toTaskDocument(t))
	if err != nil {
		return fmt.Errorf("replace task: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// List returns one page of the owner's tasks and the unpaged total.
func (r *TaskRepository) List(ctx context.Context, f ports.TaskFilter) ([]*domain.Task, int64, error) {
	if f.OwnerID == 0 {
		return nil, 0, errUnscopedFilter
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := taskFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	field, ok := sortFields[f.SortBy]
	if !ok {
		field = sortFields[ports.SortCreatedAt]
	}
	dir := 1
	if f.SortDesc {
		dir = -1
	}
	opts := options.Find().SetSort(taskSort(field, dir))
	if f.Page > 0 && f.Limit > 0 {
		opts.SetSkip(int64((f.Page - 1) * f.Limit)).SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find tasks: %w", err)
	}
	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode tasks: %w", err)
	}

	out := make([]*domain.Task, len(docs))
	for i := range docs {
		out[i] = &docs[i].Task
	}
	return out, total, nil
}

// taskSort orders by field, then id. Tasks without a due date come last
// in both directions, matching the memory store.
func taskSort(field string, dir int) bson.D {
	keys := bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
	if field == sortFields[ports.SortDueDate] {
		keys = append(bson.D{{Key: "has_due_date", Value: -1}}, keys...)
	}
	return keys
}

func taskFilter(f ports.TaskFilter) bson.M {
	filter := bson.M{"owner_id": f.OwnerID}
	status := bson.M{}
	if f.Status != "" {
		status["$eq"] = f.Status
	}
	if f.ExcludeStatus != "" {
		status["$ne"] = f.ExcludeStatus
	}
	if len(status) > 0 {
		filter["status"] = status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{bson.M{"title": re}, bson.M{"description": re}}
	}

	due := bson.M{}
	if !f.DueFrom.IsZero() {
		due["$gte"] = f.DueFrom.UTC()
	}
	if !f.DueTo.IsZero() {
		due["$lte"] = f.DueTo.UTC()
	}
	if !f.DueBefore.IsZero() {
		due["$lt"] = f.DueBefore.UTC()
	}
	if len(due) > 0 {
		filter["due_date"] = due
	}
	return filter
}

func (r *TaskRepository) CountByStatus(ctx context.Context, ownerID int64) (map[domain.TaskStatus]int64, error) {
	counts, err := r.countBy(ctx, ownerID, "status")
	if err != nil {
		return nil, err
	}
	out := make(map[domain.TaskStatus]int64, len(counts))
	for k, v := range counts {
		out[domain.TaskStatus(k)] = v
	}
	return out, nil
}

func (r *TaskRepository) CountByPriority(ctx context.Context, ownerID int64) (map[domain.TaskPriority]int64, error) {
	counts, err := r.countBy(ctx, ownerID, "priority")
	if err != nil {
		return nil, err
	}
	out := make(map[domain.TaskPriority]int64, len(counts))
	for k, v := range counts {
		out[domain.TaskPriority(k)] = v
	}
	return out, nil
}

func (r *TaskRepository) countBy(ctx context.Context, ownerID int64, field string) (map[string]int64, error) {
	if ownerID == 0 {
		return nil, errUnscopedFilter
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": ownerID}}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate tasks by %s: %w", field, err)
	}
	var rows []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s counts: %w", field, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

// EnsureIndexes creates the owner-scoped indexes used by List.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "due_date", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
