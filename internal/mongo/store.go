// Package mongo stores budgets and expenses in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"budgetly/internal/core"
	applog "budgetly/internal/log"
)

const (
	budgetsCollection  = "budgets"
	expensesCollection = "expenses"
)

// Store keeps budgets and expenses in two collections of one database.
type Store struct {
	client   *mongo.Client
	budgets  *mongo.Collection
	expenses *mongo.Collection
}

// NewStore connects to uri. An empty database falls back to the one named in the URI.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		cs, err := connstring.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("parse mongo uri: %w", err)
		}
		database = cs.Database
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}

	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := cli.Database(database)
	s := &Store{
		client:   cli,
		budgets:  db.Collection(budgetsCollection),
		expenses: db.Collection(expensesCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	if _, err := s.budgets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "year", Value: 1}, {Key: "month", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create budgets index: %w", err)
	}
	if _, err := s.expenses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create expenses index: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// AddBudget upserts the budget by id, generating one when empty.
func (s *Store) AddBudget(ctx context.Context, b core.Budget) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if err := upsert(ctx, s.budgets, b.ID, budgetToDoc(b)); err != nil {
		return "", fmt.Errorf("save budget: %w", err)
	}
	return b.ID, nil
}

// AddExpense upserts the expense by id, generating one when empty.
func (s *Store) AddExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := upsert(ctx, s.expenses, e.ID, expenseToDoc(e)); err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}
	return e.ID, nil
}

func upsert(ctx context.Context, c *mongo.Collection, id string, doc any) error {
	_, err := c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (s *Store) ListBudgetsForUser(ctx context.Context, userID string) ([]core.Budget, error) {
	cur, err := s.budgets.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("find budgets: %w", err)
	}
	defer cur.Close(ctx)

	var out []core.Budget
	for cur.Next(ctx) {
		b, err := decodeBudget(cur.Current)
		if err != nil {
			slog.WarnContext(ctx, "Skipping undecodable budget document",
				applog.FieldComponent, applog.ComponentMongo,
				applog.FieldUserID, userID, applog.FieldError, err)
			continue
		}
		out = append(out, b)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

func (s *Store) ListExpensesForUser(ctx context.Context, userID string) ([]core.Expense, error) {
	return s.findExpenses(ctx, userID, bson.M{"userId": userID})
}

// ListExpensesInRange returns the user's expenses with start <= date < end.
func (s *Store) ListExpensesInRange(ctx context.Context, userID string, start, end time.Time) ([]core.Expense, error) {
	return s.findExpenses(ctx, userID, rangeFilter(userID, start, end))
}

func rangeFilter(userID string, start, end time.Time) bson.M {
	return bson.M{
		"userId": userID,
		"date":   bson.M{"$gte": start.UTC(), "$lt": end.UTC()},
	}
}

func (s *Store) findExpenses(ctx context.Context, userID string, filter bson.M) ([]core.Expense, error) {
	cur, err := s.expenses.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}
	defer cur.Close(ctx)

	var out []core.Expense
	for cur.Next(ctx) {
		e, err := decodeExpense(cur.Current)
		if err != nil {
			slog.WarnContext(ctx, "Skipping undecodable expense document",
				applog.FieldComponent, applog.ComponentMongo,
				applog.FieldUserID, userID, applog.FieldError, err)
			continue
		}
		out = append(out, e)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// ListUserIDs returns every user that owns a budget.
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	values, err := s.budgets.Distinct(ctx, "userId", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct user ids: %w", err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok && id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}
