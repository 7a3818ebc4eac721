package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"

    "github.com/iliyamo/wedding-booking/internal/model"
)

// ErrFlowStateNotFound is returned when a wizard has never been entered.
var ErrFlowStateNotFound = errors.New("flow state not found")

// FlowStateRepo persists wizard progress snapshots in the `flow_states`
// table, keyed by (user_id, flow).  Each row also stores the step's rank
// in the flow's canonical ordering so the upsert itself can resolve
// conflicting writes furthest-wins: a stale write from a backgrounded
// tab can never rewind a user past progress recorded elsewhere.
type FlowStateRepo struct {
    db *sql.DB
}

// NewFlowStateRepo returns a FlowStateRepo bound to the given database.
func NewFlowStateRepo(db *sql.DB) *FlowStateRepo { return &FlowStateRepo{db: db} }

// Get loads the snapshot for one wizard instance.  It returns
// ErrFlowStateNotFound when the wizard was never started.
func (r *FlowStateRepo) Get(ctx context.Context, userID uint64, flow model.FlowType) (model.BookingFlowState, error) {
    const q = `SELECT step, tier_id, selections, addons, event_date, updated_at
        FROM flow_states WHERE user_id = ? AND flow = ?`
    var (
        st         model.BookingFlowState
        selJSON    []byte
        addonsJSON []byte
        eventDate  sql.NullTime
    )
    st.UserID = userID
    st.Flow = flow
    err := r.db.QueryRowContext(ctx, q, userID, string(flow)).
        Scan(&st.Step, &st.TierID, &selJSON, &addonsJSON, &eventDate, &st.UpdatedAt)
    if err == sql.ErrNoRows {
        return model.BookingFlowState{}, ErrFlowStateNotFound
    }
    if err != nil {
        return model.BookingFlowState{}, err
    }
    st.Selections = model.Selection{}
    if len(selJSON) > 0 {
        if err := json.Unmarshal(selJSON, &st.Selections); err != nil {
            // A corrupt snapshot should not strand the wizard; start the
            // selections over but keep the step.
            st.Selections = model.Selection{}
        }
    }
    if len(addonsJSON) > 0 {
        if err := json.Unmarshal(addonsJSON, &st.Addons); err != nil {
            st.Addons = nil
        }
    }
    if eventDate.Valid {
        d := eventDate.Time.UTC()
        st.EventDate = &d
    }
    return st, nil
}

// Save upserts the snapshot.  The step column only moves forward: the
// incoming step wins only when its rank is at least the stored rank.
// Selections, tier and event date always take the latest write, since
// they are edits the user just made.
func (r *FlowStateRepo) Save(ctx context.Context, st model.BookingFlowState) error {
    selJSON, err := json.Marshal(st.Selections)
    if err != nil {
        return err
    }
    addons := st.Addons
    if addons == nil {
        addons = []uint64{}
    }
    addonsJSON, err := json.Marshal(addons)
    if err != nil {
        return err
    }
    var eventDate interface{}
    if st.EventDate != nil {
        eventDate = st.EventDate.UTC().Format("2006-01-02")
    }
    rank := model.StepRank(st.Step)
    const q = `INSERT INTO flow_states (user_id, flow, step, step_rank, tier_id, selections, addons, event_date)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE
            step = IF(VALUES(step_rank) >= step_rank, VALUES(step), step),
            step_rank = GREATEST(step_rank, VALUES(step_rank)),
            tier_id = VALUES(tier_id),
            selections = VALUES(selections),
            addons = VALUES(addons),
            event_date = COALESCE(VALUES(event_date), event_date)`
    _, err = r.db.ExecContext(ctx, q,
        st.UserID, string(st.Flow), string(st.Step), rank, st.TierID, selJSON, addonsJSON, eventDate)
    return err
}
