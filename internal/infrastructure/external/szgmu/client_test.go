package szgmu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
)

func TestScheduleDTO_Parsing(t *testing.T) {
	jsonData := `{
    "fileName": "ЛД 2 курс В поток весна.xlsx",
    "formType": "очная",
    "updateTime": "2025-02-01T10:00:00",
    "statusId": 2,
    "isUploadedFromExcel": true,
    "scheduleLessonDtoList": [
        {
            "id": 9001,
            "scheduleId": 100,
            "subjectName": "Анатомия",
            "lessonType": "семинарского",
            "lectorName": "Иванова И.И.",
            "auditoryNumber": "215",
            "locationAddress": "Пискаревский пр., 47",
            "pairTime": "9.00-10.30",
            "weekNumber": 3,
            "dayName": "пятница",
            "subgroup": "103б",
            "studyGroup": "103",
            "groupStream": "в",
            "speciality": "31.05.01 лечебное дело",
            "courseNumber": 2,
            "academicYear": "2024/2025",
            "semester": "весенний"
        }
    ]
}`

	var dto ScheduleDTO
	err := json.Unmarshal([]byte(jsonData), &dto)
	require.NoError(t, err)

	assert.Equal(t, "очная", dto.FormType)
	assert.Equal(t, 2, dto.StatusID)
	require.Len(t, dto.Lessons, 1)

	lesson := dto.Lessons[0]
	assert.Equal(t, "Анатомия", lesson.SubjectName)
	assert.Equal(t, "семинарского", lesson.LessonType)
	assert.Equal(t, "9.00-10.30", lesson.PairTime)
	assert.Equal(t, 3, lesson.WeekNumber)
	assert.Equal(t, "пятница", lesson.DayName)
	assert.Equal(t, "103б", lesson.Subgroup)
}

func TestMapper_RecordsFromSchedule(t *testing.T) {
	mapper := NewMapper()

	dto := &ScheduleDTO{
		Lessons: []LessonDTO{
			{
				SubjectName:    " Анатомия ",
				LessonType:     "семинарского",
				LectorName:     "Иванова И.И.",
				AuditoryNumber: "215",
				LocationAddr:   "Пискаревский пр., 47",
				PairTime:       "9.00-10.30",
				WeekNumber:     3,
				DayName:        "пятница",
				Subgroup:       "103б",
				AcademicYear:   "2024/2025",
				Semester:       "весенний",
			},
			{
				SubjectName:  "Гистология",
				LessonType:   "лекционного",
				LocationAddr: "Кирочная ул., 41",
				PairTime:     "10.55",
				WeekNumber:   3,
				DayName:      "пятница",
				Subgroup:     "103б",
			},
		},
	}

	records := mapper.RecordsFromSchedule(100, dto)
	require.Len(t, records, 2)

	assert.Equal(t, "Анатомия", records[0].Subject)
	assert.Equal(t, "100", records[0].SourceID)
	assert.Equal(t, "215", records[0].Room)
	assert.Equal(t, "весенний", records[0].Semester)

	// No auditory number: the location address becomes the room.
	assert.Equal(t, "Кирочная ул., 41", records[1].Room)
	assert.Equal(t, "100", records[1].SourceID)
}

func TestMapper_RecordsFromSchedule_Nil(t *testing.T) {
	assert.Nil(t, NewMapper().RecordsFromSchedule(1, nil))
}

func TestMapper_FilterToRequest_NilSlicesBecomeEmpty(t *testing.T) {
	req := NewMapper().FilterToRequest(schedule.FeedFilter{
		GroupStream: []string{"в"},
	})

	assert.Equal(t, []string{"в"}, req.GroupStream)
	assert.NotNil(t, req.Speciality)
	assert.NotNil(t, req.Semester)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultClientConfig(server.URL)
	cfg.MaxRetries = 0
	cfg.RateLimiterConfig.MinInterval = 0
	return NewClient(cfg)
}

func TestClient_FetchFeeds(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(findAllPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req FindAllRequestDTO
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"весенний"}, req.Semester)

		json.NewEncoder(w).Encode(FindAllResponseDTO{
			Content: []ScheduleSummaryDTO{{ID: 100}, {ID: 50}},
		})
	})
	mux.HandleFunc(findByIDPath, func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("xlsxScheduleId")
		json.NewEncoder(w).Encode(ScheduleDTO{
			Lessons: []LessonDTO{{
				SubjectName: "Анатомия " + id,
				LessonType:  "семинарского",
				PairTime:    "9.00-10.30",
				WeekNumber:  1,
				DayName:     "пн",
				Subgroup:    "103б",
			}},
		})
	})

	client := newTestClient(t, mux)

	feeds, err := client.FetchFeeds(context.Background(), schedule.FeedFilter{
		Semester: []string{"весенний"},
	})
	require.NoError(t, err)
	require.Len(t, feeds, 2)

	assert.Equal(t, "100", feeds[0][0].SourceID)
	assert.Equal(t, "50", feeds[1][0].SourceID)
}

func TestClient_FetchFeeds_NoFeeds(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(findAllPath, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(FindAllResponseDTO{})
	})

	client := newTestClient(t, mux)

	feeds, err := client.FetchFeeds(context.Background(), schedule.FeedFilter{})
	require.NoError(t, err)
	assert.Empty(t, feeds)
}

func TestClient_ServerErrorSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(findAllPath, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})

	client := newTestClient(t, mux)

	_, err := client.FindScheduleIDs(context.Background(), FindAllRequestDTO{})
	require.Error(t, err)

	var apiErr *APIErrorDTO
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	mux := http.NewServeMux()
	mux.HandleFunc(findAllPath, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, `{"message":"temporarily unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(FindAllResponseDTO{
			Content: []ScheduleSummaryDTO{{ID: 7}},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := DefaultClientConfig(server.URL)
	cfg.MaxRetries = 2
	cfg.RetryBaseDelay = time.Millisecond
	cfg.RateLimiterConfig.MinInterval = 0
	client := NewClient(cfg)

	ids, err := client.FindScheduleIDs(context.Background(), FindAllRequestDTO{})
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)
	assert.Equal(t, 2, attempts)
}

func TestRateLimiter_ExhaustsBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerMinute: 1,
		BurstSize:         2,
		MinInterval:       0,
		WaitTimeout:       time.Millisecond,
	})

	assert.True(t, rl.TryAllow())
	assert.True(t, rl.TryAllow())
	assert.False(t, rl.TryAllow())

	rl.Reset()
	assert.True(t, rl.TryAllow())
}
