//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"booking-engine/internal/domain/user"
	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/handler/api"
	reqdto "booking-engine/internal/handler/dto/request"
	resdto "booking-engine/internal/handler/dto/response"
	"booking-engine/internal/handler/middleware"
	"booking-engine/internal/mocks/commandsmock"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/testutil"
	"booking-engine/internal/testutil/builder"
	"booking-engine/internal/testutil/httptest"
	"booking-engine/internal/usecase/commands"
	"booking-engine/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type WaitlistHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockWaitlistCommands
	actor        shared.Actor
}

func (s *WaitlistHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockWaitlistCommands(s.mockCtrl)
	s.actor = shared.Actor{UserID: uuid.New(), Role: user.RoleClient}

	h := api.NewWaitlistHandler(s.mockCommands)
	auth := func(c *gin.Context) {
		middleware.SetActor(c, s.actor)
		c.Next()
	}
	s.router.POST("/waitlist", auth, h.Create)
	s.router.POST("/waitlist/:id/respond", auth, h.Respond)
}

func (s *WaitlistHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestWaitlistHandlerSuite(t *testing.T) {
	suite.Run(t, new(WaitlistHandlerTestSuite))
}

func (s *WaitlistHandlerTestSuite) TestCreate() {
	businessID, serviceID := uuid.New(), uuid.New()
	entry := builder.NewWaitlistBuilder(businessID, serviceID).MustBuild()
	from, to := "09:00", "12:00"
	req := reqdto.CreateWaitlistEntryRequest{
		BusinessID: businessID,
		Preferences: reqdto.WaitlistPreferences{
			ServiceIDs: []uuid.UUID{serviceID},
			TimeFrom:   &from,
			TimeTo:     &to,
			DaysOfWeek: []int{1, 3},
		},
	}

	tests := []struct {
		name         string
		mutate       func(m map[string]any)
		setupMock    func()
		expectCode   int
		expectInBody string
	}{
		{
			name: "joined with default priority",
			setupMock: func() {
				s.mockCommands.EXPECT().
					CreateWaitlistEntry(gomock.Any(), commands.CreateWaitlistEntryInput{
						BusinessID: businessID,
						ClientID:   s.actor.UserID,
						Preferences: waitlist.Preferences{
							ServiceIDs: []uuid.UUID{serviceID},
							TimeFrom:   &from,
							TimeTo:     &to,
							DaysOfWeek: []int{1, 3},
						},
						Priority: waitlist.PriorityNormal,
					}).
					Return(entry, nil)
			},
			expectCode: http.StatusCreated,
		},
		{
			name:         "business required",
			mutate:       testutil.Field("business_id", nil),
			expectCode:   http.StatusBadRequest,
			expectInBody: "Invalid request",
		},
		{
			name: "duplicate entry",
			setupMock: func() {
				s.mockCommands.EXPECT().CreateWaitlistEntry(gomock.Any(), gomock.Any()).
					Return(nil, errs.Mark(errs.Conflict("Client already has a waitlist entry for this service"), commands.ErrDuplicateWaitlistEntry))
			},
			expectCode:   http.StatusConflict,
			expectInBody: "already has a waitlist entry",
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			if tc.setupMock != nil {
				tc.setupMock()
			}
			var muts []func(map[string]any)
			if tc.mutate != nil {
				muts = append(muts, tc.mutate)
			}
			w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/waitlist", testutil.DtoMap(s.T(), req, muts...), "")

			if tc.expectInBody != "" {
				httptest.AssertErrorResponse(s.T(), w, tc.expectCode, tc.expectInBody)
				return
			}
			var resp resdto.WaitlistEntryResponse
			httptest.AssertSuccessResponse(s.T(), w, tc.expectCode, &resp)
			s.Equal(entry.ID(), resp.ID)
			s.Equal("active", resp.Status)
			s.Equal("normal", resp.Priority)
		})
	}
}

func (s *WaitlistHandlerTestSuite) TestRespond() {
	entryID := uuid.New()
	path := "/waitlist/" + entryID.String() + "/respond"
	entry := builder.NewWaitlistBuilder(uuid.New()).MustBuild()

	s.Run("accept", func() {
		s.SetupTest()
		s.mockCommands.EXPECT().RespondToOffer(gomock.Any(), entryID, s.actor.UserID, true).Return(entry, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, path, map[string]any{"accept": true}, "")
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
	})

	s.Run("decline", func() {
		s.SetupTest()
		s.mockCommands.EXPECT().RespondToOffer(gomock.Any(), entryID, s.actor.UserID, false).Return(entry, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, path, map[string]any{"accept": false}, "")
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
	})

	s.Run("answer required", func() {
		s.SetupTest()
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, path, map[string]any{}, "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request")
	})

	s.Run("offer expired", func() {
		s.SetupTest()
		s.mockCommands.EXPECT().RespondToOffer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.Conflict("the offer has expired"))

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, path, map[string]any{"accept": true}, "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "offer has expired")
	})
}
