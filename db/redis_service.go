package db

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"asistencia-server-go/models"
)

const (
	programsKey       = "carreras" // Set: Stores all program IDs
	programInfoPrefix = "carrera:" // Hash prefix: carrera:{id} -> program details
	rosterPrefix      = "lista:"   // lista:{carrera}:{grupo}:... -> roster, attendance, history, records, notes
)

var (
	ErrInvalidProgram = errors.New("program ID and Name cannot be empty")
	ErrInvalidStudent = errors.New("student enrollment and name cannot be empty")
)

// RedisService handles operations with the Redis database
type RedisService struct {
	Client *redis.Client
}

// NewRedisService creates a new RedisService instance
func NewRedisService(client *redis.Client) *RedisService {
	return &RedisService{Client: client}
}

func programInfoKey(programID string) string {
	return programInfoPrefix + programID
}

// carrera:{id}:grupos -> ordered group names
func programGroupsKey(programID string) string {
	return programInfoPrefix + programID + ":grupos"
}

func rosterKey(programID, group string) string {
	return rosterPrefix + programID + ":" + group
}

func studentsKey(programID, group string) string {
	return rosterKey(programID, group) + ":alumnos"
}

func attendanceKey(programID, group, date string) string {
	return rosterKey(programID, group) + ":asistencia:" + date
}

func historyKey(programID, group string) string {
	return rosterKey(programID, group) + ":historial"
}

func recordKey(programID, group string, id int64) string {
	return rosterKey(programID, group) + ":registro:" + strconv.FormatInt(id, 10)
}

func observationsKey(programID, group string) string {
	return rosterKey(programID, group) + ":observaciones"
}

// globEscaper quotes the characters SCAN MATCH treats as patterns.
var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// --- Program Operations ---

// AddProgram stores a program and replaces its group list
func (s *RedisService) AddProgram(ctx context.Context, program models.Program) error {
	if program.ID == "" || program.Name == "" {
		return ErrInvalidProgram
	}
	groupsKey := programGroupsKey(program.ID)

	pipe := s.Client.TxPipeline()
	pipe.SAdd(ctx, programsKey, program.ID)
	pipe.HSet(ctx, programInfoKey(program.ID), map[string]interface{}{
		"id":     program.ID,
		"nombre": program.Name,
		"icono":  program.Icon,
	})
	pipe.Del(ctx, groupsKey)
	if len(program.Groups) > 0 {
		groups := make([]interface{}, len(program.Groups))
		for i, g := range program.Groups {
			groups[i] = g
		}
		pipe.RPush(ctx, groupsKey, groups...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "add program %s", program.ID)
	}
	log.Printf("Added program: %s (%s) with %d groups", program.Name, program.ID, len(program.Groups))
	return nil
}

// GetProgram retrieves a program by its ID, nil when it does not exist
func (s *RedisService) GetProgram(ctx context.Context, programID string) (*models.Program, error) {
	data, err := s.Client.HGetAll(ctx, programInfoKey(programID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get program %s", programID)
	}
	if len(data) == 0 {
		return nil, nil
	}

	groups, err := s.GetGroups(ctx, programID)
	if err != nil {
		return nil, err
	}
	return &models.Program{
		ID:     data["id"],
		Name:   data["nombre"],
		Icon:   data["icono"],
		Groups: groups,
	}, nil
}

// GetAllPrograms retrieves all programs ordered by ID
func (s *RedisService) GetAllPrograms(ctx context.Context) ([]models.Program, error) {
	ids, err := s.Client.SMembers(ctx, programsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Wrap(err, "get program IDs")
	}
	sort.Strings(ids)

	programs := make([]models.Program, 0, len(ids))
	for _, id := range ids {
		program, err := s.GetProgram(ctx, id)
		if err != nil {
			// Log the error but continue trying to fetch others
			log.Printf("Error fetching details for program %s: %v", id, err)
			continue
		}
		if program != nil {
			programs = append(programs, *program)
		}
	}
	return programs, nil
}

// ProgramExists checks if a program ID exists in the programs set
func (s *RedisService) ProgramExists(ctx context.Context, programID string) (bool, error) {
	exists, err := s.Client.SIsMember(ctx, programsKey, programID).Result()
	if err != nil {
		return false, errors.Wrapf(err, "check program %s", programID)
	}
	return exists, nil
}

// CountPrograms returns the size of the programs set
func (s *RedisService) CountPrograms(ctx context.Context) (int64, error) {
	count, err := s.Client.SCard(ctx, programsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, errors.Wrap(err, "count programs")
	}
	return count, nil
}

// GetGroups returns a program's groups in insertion order
func (s *RedisService) GetGroups(ctx context.Context, programID string) ([]string, error) {
	groups, err := s.Client.LRange(ctx, programGroupsKey(programID), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(err, "get groups of %s", programID)
	}
	if groups == nil {
		groups = []string{}
	}
	return groups, nil
}

// --- Student Operations ---

// GetStudents returns a roster ordered by ID with attendance flags for date
func (s *RedisService) GetStudents(ctx context.Context, programID, group, date string) ([]models.Student, error) {
	raw, err := s.Client.HGetAll(ctx, studentsKey(programID, group)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(err, "get students of %s/%s", programID, group)
	}

	present := map[string]bool{}
	if date != "" {
		ids, err := s.Client.SMembers(ctx, attendanceKey(programID, group, date)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, errors.Wrapf(err, "get attendance of %s/%s on %s", programID, group, date)
		}
		for _, id := range ids {
			present[id] = true
		}
	}

	students := make([]models.Student, 0, len(raw))
	for field, value := range raw {
		var student models.Student
		if err := json.Unmarshal([]byte(value), &student); err != nil {
			log.Printf("Skipping malformed student %s in %s/%s: %v", field, programID, group, err)
			continue
		}
		student.Present = present[field]
		students = append(students, student)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

// AddStudent assigns the next sequential ID (max+1) and stores the student.
// The ID is claimed with HSETNX so two concurrent adds never share one.
func (s *RedisService) AddStudent(ctx context.Context, programID, group string, student models.Student) (models.Student, error) {
	if student.Enrollment == "" || student.Name == "" {
		return models.Student{}, ErrInvalidStudent
	}
	key := studentsKey(programID, group)

	fields, err := s.Client.HKeys(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.Student{}, errors.Wrapf(err, "get student IDs of %s/%s", programID, group)
	}
	next := 1
	for _, f := range fields {
		if id, err := strconv.Atoi(f); err == nil && id >= next {
			next = id + 1
		}
	}

	student.Present = false
	for {
		student.ID = next
		payload, err := json.Marshal(student)
		if err != nil {
			return models.Student{}, errors.Wrap(err, "encode student")
		}
		ok, err := s.Client.HSetNX(ctx, key, strconv.Itoa(next), payload).Result()
		if err != nil {
			return models.Student{}, errors.Wrapf(err, "add student to %s/%s", programID, group)
		}
		if ok {
			return student, nil
		}
		next++
	}
}

// DeleteStudent removes a student and its attendance marks, and reports
// whether it existed. The freed ID may be handed out again by AddStudent.
func (s *RedisService) DeleteStudent(ctx context.Context, programID, group string, studentID int) (bool, error) {
	member := strconv.Itoa(studentID)
	pattern := globEscaper.Replace(attendanceKey(programID, group, "")) + "*"

	var dates []string
	iter := s.Client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		dates = append(dates, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return false, errors.Wrapf(err, "list attendance of %s/%s", programID, group)
	}

	pipe := s.Client.TxPipeline()
	hdel := pipe.HDel(ctx, studentsKey(programID, group), member)
	for _, key := range dates {
		pipe.SRem(ctx, key, member)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, errors.Wrapf(err, "delete student %d from %s/%s", studentID, programID, group)
	}
	return hdel.Val() > 0, nil
}

// SetAttendance marks a student present or absent for date
func (s *RedisService) SetAttendance(ctx context.Context, programID, group, date string, studentID int, present bool) error {
	key := attendanceKey(programID, group, date)
	member := strconv.Itoa(studentID)

	var err error
	if present {
		err = s.Client.SAdd(ctx, key, member).Err()
	} else {
		err = s.Client.SRem(ctx, key, member).Err()
	}
	if err != nil {
		return errors.Wrapf(err, "set attendance of %d in %s/%s on %s", studentID, programID, group, date)
	}
	return nil
}

// --- History Operations ---

// SaveAttendance stores the record and prepends its entry to the group history
func (s *RedisService) SaveAttendance(ctx context.Context, record models.AttendanceRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "encode attendance record")
	}
	entryJSON, err := json.Marshal(record.Entry())
	if err != nil {
		return errors.Wrap(err, "encode history entry")
	}

	pipe := s.Client.TxPipeline()
	pipe.Set(ctx, recordKey(record.ProgramID, record.Group, record.ID), recordJSON, 0)
	pipe.LPush(ctx, historyKey(record.ProgramID, record.Group), entryJSON)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "save attendance for %s/%s on %s", record.ProgramID, record.Group, record.Date)
	}
	return nil
}

// AppendHistory adds an entry at the tail (oldest end) without a record
func (s *RedisService) AppendHistory(ctx context.Context, entry models.HistoryEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "encode history entry")
	}
	if err := s.Client.RPush(ctx, historyKey(entry.ProgramID, entry.Group), payload).Err(); err != nil {
		return errors.Wrapf(err, "append history for %s/%s", entry.ProgramID, entry.Group)
	}
	return nil
}

// GetHistory returns a group's saved sessions, newest first
func (s *RedisService) GetHistory(ctx context.Context, programID, group string) ([]models.HistoryEntry, error) {
	raw, err := s.Client.LRange(ctx, historyKey(programID, group), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(err, "get history of %s/%s", programID, group)
	}

	history := make([]models.HistoryEntry, 0, len(raw))
	for _, value := range raw {
		var entry models.HistoryEntry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			log.Printf("Skipping malformed history entry in %s/%s: %v", programID, group, err)
			continue
		}
		history = append(history, entry)
	}
	return history, nil
}

// GetRecord returns a group's saved record, nil when it does not exist
func (s *RedisService) GetRecord(ctx context.Context, programID, group string, id int64) (*models.AttendanceRecord, error) {
	raw, err := s.Client.Get(ctx, recordKey(programID, group, id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get record %d", id)
	}
	var record models.AttendanceRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, errors.Wrapf(err, "decode record %d", id)
	}
	return &record, nil
}

// --- Observation Operations ---

// AddObservation prepends a note to the group's observations
func (s *RedisService) AddObservation(ctx context.Context, programID, group string, obs models.Observation) error {
	payload, err := json.Marshal(obs)
	if err != nil {
		return errors.Wrap(err, "encode observation")
	}
	if err := s.Client.LPush(ctx, observationsKey(programID, group), payload).Err(); err != nil {
		return errors.Wrapf(err, "add observation to %s/%s", programID, group)
	}
	return nil
}

// GetObservations returns the group's notes, newest first
func (s *RedisService) GetObservations(ctx context.Context, programID, group string) ([]models.Observation, error) {
	raw, err := s.Client.LRange(ctx, observationsKey(programID, group), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(err, "get observations of %s/%s", programID, group)
	}

	observations := make([]models.Observation, 0, len(raw))
	for _, value := range raw {
		var obs models.Observation
		if err := json.Unmarshal([]byte(value), &obs); err != nil {
			log.Printf("Skipping malformed observation in %s/%s: %v", programID, group, err)
			continue
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

// --- Utility ---

// InitializeRedisClient creates and tests a Redis client connection
func InitializeRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrapf(err, "connect to redis at %s", addr)
	}

	log.Printf("Successfully connected to Redis %s DB %d", addr, db)
	return rdb, nil
}
