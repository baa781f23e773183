package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davicafu/knowledgenest/internal/course/domain"
)

// CourseRepoMongoDB implementa CourseRepository para MongoDB.
type CourseRepoMongoDB struct {
	client          *mongo.Client
	coursesColl     *mongo.Collection
	enrollmentsColl *mongo.Collection
	countersColl    *mongo.Collection
}

func NewCourseRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*CourseRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	db := client.Database(dbName)
	repo := &CourseRepoMongoDB{
		client:          client,
		coursesColl:     db.Collection("courses"),
		enrollmentsColl: db.Collection("enrollments"),
		countersColl:    db.Collection("counters"),
	}

	// Matrícula única por pareja (user, course).
	_, err := repo.enrollmentsColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "course_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create enrollment index: %w", err)
	}

	return repo, nil
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no contaminar el dominio con tags de BSON.

type mongoCourse struct {
	ID          int64     `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	ContentURL  string    `bson:"content_url"`
	CreatedAt   time.Time `bson:"created_at"`
}

type mongoEnrollment struct {
	ID         int64     `bson:"_id"`
	UserID     int64     `bson:"user_id"`
	CourseID   int64     `bson:"course_id"`
	EnrolledAt time.Time `bson:"enrolled_at"`
}

// nextID emula el autoincremental relacional con un documento contador.
func (r *CourseRepoMongoDB) nextID(ctx context.Context, sequence string) (int64, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	err := r.countersColl.FindOneAndUpdate(ctx,
		bson.M{"_id": sequence},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("could not advance sequence %q: %w", sequence, err)
	}
	return counter.Value, nil
}

func (r *CourseRepoMongoDB) CreateCourse(ctx context.Context, c *domain.Course) error {
	id, err := r.nextID(ctx, "courses")
	if err != nil {
		return err
	}

	_, err = r.coursesColl.InsertOne(ctx, mongoCourse{
		ID:          id,
		Title:       c.Title,
		Description: c.Description,
		ContentURL:  c.ContentURL,
		CreatedAt:   c.CreatedAt,
	})
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *CourseRepoMongoDB) GetCourse(ctx context.Context, id int64) (*domain.Course, error) {
	var mc mongoCourse
	err := r.coursesColl.FindOne(ctx, bson.M{"_id": id}).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}
	return mc.toDomain(), nil
}

func (r *CourseRepoMongoDB) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	cursor, err := r.coursesColl.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var courses []*domain.Course
	for cursor.Next(ctx) {
		var mc mongoCourse
		if err := cursor.Decode(&mc); err != nil {
			return nil, err
		}
		courses = append(courses, mc.toDomain())
	}
	return courses, cursor.Err()
}

func (r *CourseRepoMongoDB) CreateEnrollment(ctx context.Context, e *domain.Enrollment) error {
	id, err := r.nextID(ctx, "enrollments")
	if err != nil {
		return err
	}

	_, err = r.enrollmentsColl.InsertOne(ctx, mongoEnrollment{
		ID:         id,
		UserID:     e.UserID,
		CourseID:   e.CourseID,
		EnrolledAt: e.EnrolledAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyEnrolled
		}
		return err
	}
	e.ID = id
	return nil
}

func (r *CourseRepoMongoDB) ListEnrollments(ctx context.Context, courseID int64) ([]*domain.Enrollment, error) {
	cursor, err := r.enrollmentsColl.Find(ctx,
		bson.M{"course_id": courseID},
		options.Find().SetSort(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enrollments []*domain.Enrollment
	for cursor.Next(ctx) {
		var me mongoEnrollment
		if err := cursor.Decode(&me); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, &domain.Enrollment{
			ID:         me.ID,
			UserID:     me.UserID,
			CourseID:   me.CourseID,
			EnrolledAt: me.EnrolledAt,
		})
	}
	return enrollments, cursor.Err()
}

func (mc mongoCourse) toDomain() *domain.Course {
	return &domain.Course{
		ID:          mc.ID,
		Title:       mc.Title,
		Description: mc.Description,
		ContentURL:  mc.ContentURL,
		CreatedAt:   mc.CreatedAt,
	}
}

// Verificación estática
var _ domain.CourseRepository = (*CourseRepoMongoDB)(nil)
