package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bit2byte/mentorhub-api/internal/dto"
	"github.com/bit2byte/mentorhub-api/internal/models"
	"github.com/bit2byte/mentorhub-api/internal/repository"
)

type memDoubtRepo struct {
	nextDoubtID uint
	nextTurnID  uint
	doubts      map[uint]*models.Doubt
}

func newMemDoubtRepo() *memDoubtRepo {
	return &memDoubtRepo{doubts: map[uint]*models.Doubt{}}
}

func (r *memDoubtRepo) Create(ctx context.Context, doubt *models.Doubt) error {
	r.nextDoubtID++
	doubt.ID = r.nextDoubtID
	doubt.CreatedAt = time.Now()
	for i := range doubt.Conversation {
		r.nextTurnID++
		doubt.Conversation[i].ID = r.nextTurnID
		doubt.Conversation[i].DoubtID = doubt.ID
		doubt.Conversation[i].CreatedAt = time.Now()
	}
	stored := *doubt
	r.doubts[doubt.ID] = &stored
	return nil
}

func (r *memDoubtRepo) GetByID(ctx context.Context, id uint) (models.Doubt, error) {
	doubt, ok := r.doubts[id]
	if !ok {
		return models.Doubt{}, gorm.ErrRecordNotFound
	}
	return *doubt, nil
}

func (r *memDoubtRepo) FindOpen(ctx context.Context, assignmentID, studentID uint) (models.Doubt, error) {
	for _, doubt := range r.doubts {
		if doubt.AssignmentID == assignmentID && doubt.StudentID == studentID && !doubt.Resolved {
			return *doubt, nil
		}
	}
	return models.Doubt{}, gorm.ErrRecordNotFound
}

func (r *memDoubtRepo) AppendTurn(ctx context.Context, doubtID uint, turn *models.Turn, newStatus string) error {
	doubt, ok := r.doubts[doubtID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.nextTurnID++
	turn.ID = r.nextTurnID
	turn.DoubtID = doubtID
	turn.CreatedAt = time.Now()
	doubt.Conversation = append(doubt.Conversation, *turn)
	doubt.CurrentStatus = newStatus
	return nil
}

func (r *memDoubtRepo) MarkResolved(ctx context.Context, doubtID uint, turn *models.Turn, resolvedBy uint, at time.Time) error {
	doubt, ok := r.doubts[doubtID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.nextTurnID++
	turn.ID = r.nextTurnID
	turn.DoubtID = doubtID
	turn.CreatedAt = at
	doubt.Conversation = append(doubt.Conversation, *turn)
	doubt.CurrentStatus = models.DoubtStatusResolved
	doubt.Resolved = true
	doubt.ResolvedAt = &at
	doubt.ResolvedByID = &resolvedBy
	return nil
}

func (r *memDoubtRepo) List(ctx context.Context, filter repository.DoubtFilter) ([]models.Doubt, error) {
	var result []models.Doubt
	for _, doubt := range r.doubts {
		if filter.StudentID != nil && doubt.StudentID != *filter.StudentID {
			continue
		}
		if filter.AssignmentID != nil && doubt.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.Resolved != nil && doubt.Resolved != *filter.Resolved {
			continue
		}
		result = append(result, *doubt)
	}
	return result, nil
}

func (r *memDoubtRepo) CountByStudent(ctx context.Context, studentID uint, resolved bool) (int64, error) {
	var total int64
	for _, doubt := range r.doubts {
		if doubt.StudentID == studentID && doubt.Resolved == resolved {
			total++
		}
	}
	return total, nil
}

type stubAssignmentRepo struct {
	assignments map[uint]models.Assignment
	responses   map[[2]uint]*models.Response
}

func newStubAssignmentRepo(assignments ...models.Assignment) *stubAssignmentRepo {
	repo := &stubAssignmentRepo{
		assignments: map[uint]models.Assignment{},
		responses:   map[[2]uint]*models.Response{},
	}
	for _, assignment := range assignments {
		repo.assignments[assignment.ID] = assignment
	}
	return repo
}

func (r *stubAssignmentRepo) List(ctx context.Context, filter repository.AssignmentFilter) ([]models.Assignment, error) {
	var result []models.Assignment
	for _, assignment := range r.assignments {
		if filter.DistributionTag != "" && assignment.DistributionTag != filter.DistributionTag {
			continue
		}
		if filter.Difficulty != "" && assignment.Difficulty != filter.Difficulty {
			continue
		}
		result = append(result, assignment)
	}
	return result, nil
}

func (r *stubAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, ok := r.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (r *stubAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = uint(len(r.assignments) + 1)
	r.assignments[assignment.ID] = *assignment
	return nil
}

func (r *stubAssignmentRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.assignments)), nil
}

func (r *stubAssignmentRepo) UpsertResponse(ctx context.Context, response *models.Response) error {
	key := [2]uint{response.AssignmentID, response.StudentID}
	if existing, ok := r.responses[key]; ok {
		response.ID = existing.ID
	} else if response.ID == 0 {
		response.ID = uint(len(r.responses) + 1)
	}
	stored := *response
	stored.UpdatedAt = time.Now()
	r.responses[key] = &stored
	return nil
}

func (r *stubAssignmentRepo) GetResponse(ctx context.Context, assignmentID, studentID uint) (models.Response, error) {
	response, ok := r.responses[[2]uint{assignmentID, studentID}]
	if !ok {
		return models.Response{}, gorm.ErrRecordNotFound
	}
	return *response, nil
}

func (r *stubAssignmentRepo) ListResponsesByStudent(ctx context.Context, studentID uint) ([]models.Response, error) {
	var result []models.Response
	for _, response := range r.responses {
		if response.StudentID == studentID {
			result = append(result, *response)
		}
	}
	return result, nil
}

func (r *stubAssignmentRepo) UpdateResponse(ctx context.Context, response *models.Response) error {
	stored := *response
	r.responses[[2]uint{response.AssignmentID, response.StudentID}] = &stored
	return nil
}

type stubUserRepo struct {
	users map[uint]models.User
}

func (r *stubUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if r.users == nil {
		r.users = map[uint]models.User{}
	}
	r.users[user.ID] = *user
	return nil
}

type recordingNotifier struct {
	calls chan string
	err   error
}

func (n *recordingNotifier) NotifyReply(ctx context.Context, student models.User, assignment models.Assignment, doubtText, reply string) error {
	if n.calls != nil {
		n.calls <- student.Email
	}
	return n.err
}

func newDoubtFixture(t *testing.T, notifier ReplyNotifier) (DoubtService, *memDoubtRepo, *stubAssignmentRepo) {
	t.Helper()
	doubts := newMemDoubtRepo()
	assignments := newStubAssignmentRepo(models.Assignment{ID: 1, Title: "Binary Search", DistributionTag: models.DistributionCentral})
	users := &stubUserRepo{users: map[uint]models.User{
		7: {ID: 7, Name: "Aisha", Email: "aisha@example.com", Role: models.RoleStudent},
	}}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewDoubtService(doubts, assignments, users, notifier, validate, zerolog.Nop())
	return svc, doubts, assignments
}

var (
	student = models.Actor{ID: 7, Email: "aisha@example.com", Role: models.RoleStudent}
	mentor  = models.Actor{ID: 42, Email: "mentor@example.com", Role: models.RoleMentor}
)

func TestDoubtCreateOpensThread(t *testing.T) {
	svc, _, _ := newDoubtFixture(t, nil)

	doubt, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{
		AssignmentID: 1,
		DoubtText:    "Why does <script>alert(1)</script> the loop terminate?",
	})
	require.NoError(t, err)

	require.Equal(t, models.DoubtStatusNew, doubt.CurrentStatus)
	require.False(t, doubt.Resolved)
	require.Len(t, doubt.Conversation, 1)
	require.Equal(t, models.TurnTypeDoubt, doubt.Conversation[0].Type)
	require.Equal(t, student.ID, doubt.Conversation[0].SenderID)
	require.NotContains(t, doubt.Conversation[0].Message, "<script>")
}

func TestDoubtCreateUnknownAssignment(t *testing.T) {
	svc, _, _ := newDoubtFixture(t, nil)

	_, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{
		AssignmentID: 99,
		DoubtText:    "does this exist",
	})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestDoubtCreateRejectsBlankText(t *testing.T) {
	svc, _, _ := newDoubtFixture(t, nil)

	_, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{
		AssignmentID: 1,
		DoubtText:    "<script>only markup</script>",
	})
	require.ErrorIs(t, err, ErrBlankMessage)
}

func TestRecordDifficultyOpensThreadWhenNoneOpen(t *testing.T) {
	svc, doubts, _ := newDoubtFixture(t, nil)

	require.NoError(t, svc.RecordDifficulty(context.Background(), 1, student.ID, "stuck on recursion"))

	open, err := doubts.FindOpen(context.Background(), 1, student.ID)
	require.NoError(t, err)
	require.Equal(t, models.DoubtStatusNew, open.CurrentStatus)
	require.Len(t, open.Conversation, 1)
	require.Equal(t, models.TurnTypeDoubt, open.Conversation[0].Type)
}

func TestRecordDifficultyExtendsOpenThread(t *testing.T) {
	svc, doubts, _ := newDoubtFixture(t, nil)

	require.NoError(t, svc.RecordDifficulty(context.Background(), 1, student.ID, "first attempt failed"))
	require.NoError(t, svc.RecordDifficulty(context.Background(), 1, student.ID, "still failing"))

	open, err := doubts.FindOpen(context.Background(), 1, student.ID)
	require.NoError(t, err)
	require.Equal(t, models.DoubtStatusUnsatisfied, open.CurrentStatus)
	require.Len(t, open.Conversation, 2)
	require.Equal(t, models.TurnTypeFollowUp, open.Conversation[1].Type)

	// still exactly one thread for the pair
	all, err := doubts.List(context.Background(), repository.DoubtFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestReplyMovesThreadToReplied(t *testing.T) {
	notifier := &recordingNotifier{calls: make(chan string, 1)}
	svc, _, _ := newDoubtFixture(t, notifier)

	created, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{AssignmentID: 1, DoubtText: "help"})
	require.NoError(t, err)

	replied, err := svc.Reply(context.Background(), mentor, created.ID, "check the base case")
	require.NoError(t, err)
	require.Equal(t, models.DoubtStatusReplied, replied.CurrentStatus)
	require.Len(t, replied.Conversation, 2)
	require.Equal(t, models.TurnTypeReply, replied.Conversation[1].Type)
	require.Equal(t, mentor.ID, replied.Conversation[1].SenderID)

	select {
	case email := <-notifier.calls:
		require.Equal(t, "aisha@example.com", email)
	case <-time.After(2 * time.Second):
		t.Fatal("expected reply notification to be dispatched")
	}
}

func TestReplySurvivesNotifierFailure(t *testing.T) {
	notifier := &recordingNotifier{calls: make(chan string, 1), err: context.DeadlineExceeded}
	svc, _, _ := newDoubtFixture(t, notifier)

	created, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{AssignmentID: 1, DoubtText: "help"})
	require.NoError(t, err)

	replied, err := svc.Reply(context.Background(), mentor, created.ID, "try again")
	require.NoError(t, err)
	require.Equal(t, models.DoubtStatusReplied, replied.CurrentStatus)

	select {
	case <-notifier.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("expected notification attempt")
	}
}

func TestFollowupRequiresOwnership(t *testing.T) {
	svc, _, _ := newDoubtFixture(t, nil)

	created, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{AssignmentID: 1, DoubtText: "help"})
	require.NoError(t, err)

	other := models.Actor{ID: 8, Role: models.RoleStudent}
	_, err = svc.Followup(context.Background(), other, created.ID, "me too")
	require.ErrorIs(t, err, ErrDoubtForbidden)
}

func TestFollowupMarksUnsatisfied(t *testing.T) {
	svc, _, _ := newDoubtFixture(t, nil)

	created, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{AssignmentID: 1, DoubtText: "help"})
	require.NoError(t, err)

	_, err = svc.Reply(context.Background(), mentor, created.ID, "read chapter 3")
	require.NoError(t, err)

	followed, err := svc.Followup(context.Background(), student, created.ID, "chapter 3 did not cover it")
	require.NoError(t, err)
	require.Equal(t, models.DoubtStatusUnsatisfied, followed.CurrentStatus)
	require.Len(t, followed.Conversation, 3)
	require.Equal(t, models.TurnTypeFollowUp, followed.Conversation[2].Type)
}

func TestResolveIsTerminal(t *testing.T) {
	svc, _, _ := newDoubtFixture(t, nil)

	created, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{AssignmentID: 1, DoubtText: "help"})
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), student, created.ID)
	require.NoError(t, err)
	require.True(t, resolved.Resolved)
	require.Equal(t, models.DoubtStatusResolved, resolved.CurrentStatus)
	require.NotNil(t, resolved.ResolvedAt)
	require.Equal(t, models.TurnTypeResolve, resolved.Conversation[len(resolved.Conversation)-1].Type)

	_, err = svc.Resolve(context.Background(), student, created.ID)
	require.ErrorIs(t, err, ErrDoubtResolved)

	_, err = svc.Reply(context.Background(), mentor, created.ID, "too late")
	require.ErrorIs(t, err, ErrDoubtResolved)

	_, err = svc.Followup(context.Background(), student, created.ID, "never mind")
	require.ErrorIs(t, err, ErrDoubtResolved)
}

func TestResolveRequiresOwnership(t *testing.T) {
	svc, _, _ := newDoubtFixture(t, nil)

	created, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{AssignmentID: 1, DoubtText: "help"})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), mentor, created.ID)
	require.ErrorIs(t, err, ErrDoubtForbidden)
}

func TestCreateAfterResolveOpensFreshThread(t *testing.T) {
	svc, doubts, _ := newDoubtFixture(t, nil)

	first, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{AssignmentID: 1, DoubtText: "help"})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), student, first.ID)
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{AssignmentID: 1, DoubtText: "new problem"})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, models.DoubtStatusNew, second.CurrentStatus)

	all, err := doubts.List(context.Background(), repository.DoubtFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestGetRestrictsStudentsToOwnThreads(t *testing.T) {
	svc, _, _ := newDoubtFixture(t, nil)

	created, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{AssignmentID: 1, DoubtText: "help"})
	require.NoError(t, err)

	other := models.Actor{ID: 8, Role: models.RoleStudent}
	_, err = svc.Get(context.Background(), other, created.ID)
	require.ErrorIs(t, err, ErrDoubtForbidden)

	fromMentor, err := svc.Get(context.Background(), mentor, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, fromMentor.ID)
}

func TestListScopesStudents(t *testing.T) {
	svc, doubts, _ := newDoubtFixture(t, nil)

	_, err := svc.Create(context.Background(), student, dto.DoubtCreateRequest{AssignmentID: 1, DoubtText: "mine"})
	require.NoError(t, err)

	require.NoError(t, doubts.Create(context.Background(), &models.Doubt{
		AssignmentID:  1,
		StudentID:     8,
		CurrentStatus: models.DoubtStatusNew,
	}))

	mine, err := svc.List(context.Background(), student, dto.DoubtFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, student.ID, mine[0].StudentID)

	all, err := svc.List(context.Background(), mentor, dto.DoubtFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}
