package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"skincase_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMissionNotClaimable = errors.New("mission reward not claimable")

type MissionRepository struct {
	db *pgxpool.Pool
}

func NewMissionRepository(db *pgxpool.Pool) *MissionRepository {
	return &MissionRepository{db: db}
}

const missionColumns = `id, mission_type, category, title, description, requirements,
	xp_reward, xcoins_reward, is_active, sort_order, created_at, updated_at`

func scanMission(row interface{ Scan(dest ...any) error }) (*domain.Mission, error) {
	var m domain.Mission
	var reqJSON []byte
	if err := row.Scan(&m.ID, &m.Type, &m.Category, &m.Title, &m.Description, &reqJSON,
		&m.XPReward, &m.XcoinsReward, &m.IsActive, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(reqJSON, &m.Requirements); err != nil {
		m.Requirements = map[string]int64{}
	}
	return &m, nil
}

// ActiveMissions returns all active mission templates
func (r *MissionRepository) ActiveMissions(ctx context.Context) ([]*domain.Mission, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+missionColumns+`
		 FROM missions
		 WHERE is_active = true
		 ORDER BY sort_order, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *MissionRepository) GetByID(ctx context.Context, id int64) (*domain.Mission, error) {
	return scanMission(r.db.QueryRow(ctx,
		`SELECT `+missionColumns+` FROM missions WHERE id = $1`, id))
}

// Create inserts a mission template (admin back-office)
func (r *MissionRepository) Create(ctx context.Context, m *domain.Mission) error {
	reqJSON, err := json.Marshal(m.Requirements)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO missions (mission_type, category, title, description, requirements, xp_reward, xcoins_reward, is_active, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		m.Type, m.Category, m.Title, m.Description, reqJSON, m.XPReward, m.XcoinsReward, m.IsActive, m.SortOrder,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// Update rewrites a mission template (admin back-office)
func (r *MissionRepository) Update(ctx context.Context, m *domain.Mission) error {
	reqJSON, err := json.Marshal(m.Requirements)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`UPDATE missions
		 SET mission_type = $1, category = $2, title = $3, description = $4, requirements = $5,
		     xp_reward = $6, xcoins_reward = $7, is_active = $8, sort_order = $9, updated_at = now()
		 WHERE id = $10`,
		m.Type, m.Category, m.Title, m.Description, reqJSON, m.XPReward, m.XcoinsReward, m.IsActive, m.SortOrder, m.ID,
	)
	return err
}

// GetUserMissions returns the user's progress joined with mission details
func (r *MissionRepository) GetUserMissions(ctx context.Context, userID int64) ([]*domain.UserMissionWithDetails, error) {
	rows, err := r.db.Query(ctx,
		`SELECT
			um.id, um.user_id, um.mission_id, um.progress, um.completed,
			um.reward_claimed, um.started_at, um.completed_at, um.reward_claimed_at, um.period_start,
			m.id, m.mission_type, m.category, m.title, m.description, m.requirements,
			m.xp_reward, m.xcoins_reward, m.is_active, m.sort_order, m.created_at, m.updated_at
		 FROM user_missions um
		 JOIN missions m ON um.mission_id = m.id
		 WHERE um.user_id = $1 AND m.is_active = true
		 ORDER BY um.completed, m.sort_order, m.id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.UserMissionWithDetails
	for rows.Next() {
		var d domain.UserMissionWithDetails
		var progJSON, reqJSON []byte
		err := rows.Scan(
			&d.ID, &d.UserID, &d.MissionID, &progJSON, &d.Completed,
			&d.RewardClaimed, &d.StartedAt, &d.CompletedAt, &d.RewardClaimedAt, &d.PeriodStart,
			&d.Mission.ID, &d.Mission.Type, &d.Mission.Category, &d.Mission.Title, &d.Mission.Description, &reqJSON,
			&d.Mission.XPReward, &d.Mission.XcoinsReward, &d.Mission.IsActive, &d.Mission.SortOrder,
			&d.Mission.CreatedAt, &d.Mission.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(progJSON, &d.Progress); err != nil {
			d.Progress = map[string]int64{}
		}
		if err := json.Unmarshal(reqJSON, &d.Mission.Requirements); err != nil {
			d.Mission.Requirements = map[string]int64{}
		}
		result = append(result, &d)
	}
	return result, rows.Err()
}

// GetOrCreateUserMission fetches the progress row for the current
// period, creating it lazily
func (r *MissionRepository) GetOrCreateUserMission(ctx context.Context, userID, missionID int64, periodStart time.Time) (*domain.UserMission, error) {
	um, err := r.userMissionRow(ctx, userID, missionID, periodStart)
	if err == nil {
		return um, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var created domain.UserMission
	var progJSON []byte
	err = r.db.QueryRow(ctx,
		`INSERT INTO user_missions (user_id, mission_id, period_start)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, mission_id, period_start) DO NOTHING
		 RETURNING id, user_id, mission_id, progress, completed, reward_claimed,
		           started_at, completed_at, reward_claimed_at, period_start`,
		userID, missionID, periodStart,
	).Scan(&created.ID, &created.UserID, &created.MissionID, &progJSON, &created.Completed,
		&created.RewardClaimed, &created.StartedAt, &created.CompletedAt, &created.RewardClaimedAt, &created.PeriodStart)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.userMissionRow(ctx, userID, missionID, periodStart)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(progJSON, &created.Progress); err != nil || created.Progress == nil {
		created.Progress = map[string]int64{}
	}
	return &created, nil
}

func (r *MissionRepository) userMissionRow(ctx context.Context, userID, missionID int64, periodStart time.Time) (*domain.UserMission, error) {
	var um domain.UserMission
	var progJSON []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, mission_id, progress, completed, reward_claimed,
		        started_at, completed_at, reward_claimed_at, period_start
		 FROM user_missions
		 WHERE user_id = $1 AND mission_id = $2 AND period_start = $3`,
		userID, missionID, periodStart,
	).Scan(&um.ID, &um.UserID, &um.MissionID, &progJSON, &um.Completed,
		&um.RewardClaimed, &um.StartedAt, &um.CompletedAt, &um.RewardClaimedAt, &um.PeriodStart)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(progJSON, &um.Progress); err != nil || um.Progress == nil {
		um.Progress = map[string]int64{}
	}
	return &um, nil
}

// IncrementMetric advances one metric counter for the mission's current
// period and marks completion once every requirement is met
func (r *MissionRepository) IncrementMetric(ctx context.Context, userID int64, mission *domain.Mission, metric string, delta int64) error {
	if _, tracked := mission.Requirements[metric]; !tracked {
		return nil
	}

	periodStart := domain.MissionPeriodStart(mission.Type, time.Now())
	um, err := r.GetOrCreateUserMission(ctx, userID, mission.ID, periodStart)
	if err != nil {
		return err
	}
	if um.Completed {
		return nil
	}

	um.Progress[metric] += delta
	if um.MeetsRequirements(mission) {
		um.Completed = true
		now := time.Now()
		um.CompletedAt = &now
	}

	progJSON, err := json.Marshal(um.Progress)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`UPDATE user_missions
		 SET progress = $1, completed = $2, completed_at = $3
		 WHERE id = $4`,
		progJSON, um.Completed, um.CompletedAt, um.ID,
	)
	return err
}

// ClaimReward marks the reward taken and returns the XP and Xcoins to
// grant. The conditional UPDATE is the idempotence point: a second
// claim matches zero rows.
func (r *MissionRepository) ClaimReward(ctx context.Context, userID, userMissionID int64) (xp int64, xcoins int64, err error) {
	err = r.db.QueryRow(ctx,
		`UPDATE user_missions um
		 SET reward_claimed = true, reward_claimed_at = now()
		 FROM missions m
		 WHERE um.id = $1
		   AND um.user_id = $2
		   AND um.mission_id = m.id
		   AND um.completed = true
		   AND um.reward_claimed = false
		 RETURNING m.xp_reward, m.xcoins_reward`,
		userMissionID, userID,
	).Scan(&xp, &xcoins)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, ErrMissionNotClaimable
	}
	return xp, xcoins, err
}
