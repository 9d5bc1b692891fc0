package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/marcusfern/postpilot/internal/models"
)

type TopicStats struct {
	AvgEngagement float64
	PostCount     int
	TotalLikes    int
	TotalComments int
	TotalShares   int
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Post, error)
	ListPostedSince(ctx context.Context, since time.Time) ([]*models.Post, error)
	UpdateStatus(ctx context.Context, status string, postID int64) error
	UpdateStatusIf(ctx context.Context, postID int64, from, to, method string) (bool, error)
	ApproveDelayed(ctx context.Context, postID int64) (bool, error)
	UpdateContent(ctx context.Context, postID int64, content, hashtags string) error
	UpdateImage(ctx context.Context, postID int64, imageURL string) error
	SetEvaluation(ctx context.Context, postID int64, score float64, method string) error
	MarkPosted(ctx context.Context, postID int64, externalID string, postedAt time.Time) (bool, error)
	RecordFailure(ctx context.Context, postID int64, errMsg string) error
	SetLastError(ctx context.Context, postID int64, errMsg string) error
	MarkFailed(ctx context.Context, postID int64, errMsg string) error
	UpdateEngagement(ctx context.Context, postID int64, likes, comments, shares int, rate float64) error
	TopicStatsSince(ctx context.Context, topic string, since time.Time) (*TopicStats, error)
	AvgEngagementByHour(ctx context.Context, hour int, since time.Time) (float64, int, error)
	AvgEngagementByHashtag(ctx context.Context, tag string) (float64, int, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, topic, content, hashtags, image_url, status, approval_method, confidence_score, retry_count, last_error, external_post_id, likes, comments, shares, engagement_rate, created_at, updated_at, posted_at`

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (topic, content, hashtags, status, approval_method)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, post.Topic, post.Content, post.Hashtags, post.Status, post.ApprovalMethod).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.Topic, &post.Content, &post.Hashtags, &post.ImageURL,
		&post.Status, &post.ApprovalMethod, &post.ConfidenceScore, &post.RetryCount,
		&post.LastError, &post.ExternalPostID, &post.Likes, &post.Comments, &post.Shares,
		&post.EngagementRate, &post.CreatedAt, &post.UpdatedAt, &post.PostedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) ListByStatus(ctx context.Context, status string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *postRepository) ListPostedSince(ctx context.Context, since time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 AND posted_at >= $2 ORDER BY posted_at DESC`
	rows, err := r.db.QueryContext(ctx, query, models.PostStatusPosted, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, status string, postID int64) error {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// UpdateStatusIf performs a compare-and-set on status so two workers can
// never move the same post forward twice. When method is non-empty the
// approval method tag is written in the same statement.
func (r *postRepository) UpdateStatusIf(ctx context.Context, postID int64, from, to, method string) (bool, error) {
	var res sql.Result
	var err error

	if method != "" {
		query := `UPDATE posts SET status = $1, approval_method = $2, updated_at = $3 WHERE id = $4 AND status = $5`
		res, err = r.db.ExecContext(ctx, query, to, method, time.Now(), postID, from)
	} else {
		query := `UPDATE posts SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
		res, err = r.db.ExecContext(ctx, query, to, time.Now(), postID, from)
	}
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return n > 0, nil
}

// ApproveDelayed promotes a post to posting only if nobody intervened
// since the delayed decision was made.
func (r *postRepository) ApproveDelayed(ctx context.Context, postID int64) (bool, error) {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3 AND status = $4 AND approval_method = $5
	`
	res, err := r.db.ExecContext(ctx, query, models.PostStatusPosting, time.Now(), postID, models.PostStatusScheduled, models.ApprovalMethodDelayed)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return n > 0, nil
}

func (r *postRepository) UpdateContent(ctx context.Context, postID int64, content, hashtags string) error {
	query := `
		UPDATE posts
		SET content = $1,
			hashtags = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, content, hashtags, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateImage(ctx context.Context, postID int64, imageURL string) error {
	query := `
		UPDATE posts
		SET image_url = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, imageURL, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SetEvaluation(ctx context.Context, postID int64, score float64, method string) error {
	query := `
		UPDATE posts
		SET confidence_score = $1,
			approval_method = $2,
			status = $3,
			updated_at = $4
		WHERE id = $5 AND status = $6
	`
	_, err := r.db.ExecContext(ctx, query, score, method, models.PostStatusScheduled, time.Now(), postID, models.PostStatusGenerating)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkPosted(ctx context.Context, postID int64, externalID string, postedAt time.Time) (bool, error) {
	query := `
		UPDATE posts
		SET status = $1,
			external_post_id = $2,
			posted_at = $3,
			last_error = NULL,
			updated_at = $4
		WHERE id = $5 AND status = $6
	`
	res, err := r.db.ExecContext(ctx, query, models.PostStatusPosted, externalID, postedAt, time.Now(), postID, models.PostStatusPosting)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return n > 0, nil
}

func (r *postRepository) RecordFailure(ctx context.Context, postID int64, errMsg string) error {
	query := `
		UPDATE posts
		SET retry_count = retry_count + 1,
			last_error = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, errMsg, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SetLastError(ctx context.Context, postID int64, errMsg string) error {
	query := `
		UPDATE posts
		SET last_error = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, errMsg, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkFailed(ctx context.Context, postID int64, errMsg string) error {
	query := `
		UPDATE posts
		SET status = $1,
			last_error = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, errMsg, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateEngagement(ctx context.Context, postID int64, likes, comments, shares int, rate float64) error {
	query := `
		UPDATE posts
		SET likes = $1,
			comments = $2,
			shares = $3,
			engagement_rate = $4,
			updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query, likes, comments, shares, rate, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) TopicStatsSince(ctx context.Context, topic string, since time.Time) (*TopicStats, error) {
	query := `
		SELECT COALESCE(AVG(engagement_rate), 0), COUNT(*), COALESCE(SUM(likes), 0), COALESCE(SUM(comments), 0), COALESCE(SUM(shares), 0)
		FROM posts
		WHERE topic = $1 AND status = $2 AND posted_at >= $3
	`
	row := r.db.QueryRowContext(ctx, query, topic, models.PostStatusPosted, since)

	var stats TopicStats
	err := row.Scan(&stats.AvgEngagement, &stats.PostCount, &stats.TotalLikes, &stats.TotalComments, &stats.TotalShares)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &stats, nil
}

func (r *postRepository) AvgEngagementByHour(ctx context.Context, hour int, since time.Time) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(engagement_rate), 0), COUNT(*)
		FROM posts
		WHERE status = $1 AND posted_at >= $2 AND EXTRACT(HOUR FROM posted_at) = $3
	`
	row := r.db.QueryRowContext(ctx, query, models.PostStatusPosted, since, hour)

	var avg float64
	var count int
	if err := row.Scan(&avg, &count); err != nil {
		slog.Info(err.Error())
		return 0, 0, err
	}
	return avg, count, nil
}

func (r *postRepository) AvgEngagementByHashtag(ctx context.Context, tag string) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(engagement_rate), 0), COUNT(*)
		FROM posts
		WHERE status = $1 AND hashtags ILIKE '%' || $2 || '%'
	`
	row := r.db.QueryRowContext(ctx, query, models.PostStatusPosted, tag)

	var avg float64
	var count int
	if err := row.Scan(&avg, &count); err != nil {
		slog.Info(err.Error())
		return 0, 0, err
	}
	return avg, count, nil
}
