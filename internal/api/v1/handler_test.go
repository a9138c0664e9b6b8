package v1_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/orbitsaas/credit-ledger/internal/api"
	v1 "github.com/orbitsaas/credit-ledger/internal/api/v1"
	apivalidator "github.com/orbitsaas/credit-ledger/internal/api/validator"
	"github.com/orbitsaas/credit-ledger/internal/constants"
	apperrors "github.com/orbitsaas/credit-ledger/internal/errors"
	"github.com/orbitsaas/credit-ledger/internal/metrics"
	"github.com/orbitsaas/credit-ledger/internal/mocks"
	"github.com/orbitsaas/credit-ledger/internal/model"
	"github.com/orbitsaas/credit-ledger/internal/publishers"
	"github.com/orbitsaas/credit-ledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const (
	testOrgID  = "01J9ZX3M5K8Q2W4R6T8V0Y2C4E"
	otherOrgID = "01J9ZX3M5K8Q2W4R6T8V0Y2C4F"
)

var testMetrics = metrics.NewMetrics()

type chargePublisher struct {
	mock.Mock
}

func (m *chargePublisher) PublishCharge(ctx context.Context, charge publishers.ChargeRequest) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func newTestApp() (*fiber.App, *mocks.LedgerService, *chargePublisher) {
	ledger := &mocks.LedgerService{}
	charges := &chargePublisher{}

	xValidator := apivalidator.NewXValidator(playground.New(), testMetrics)
	handler := v1.NewHandler(zap.NewNop(), ledger, charges, xValidator, testMetrics)

	app := fiber.New(fiber.Config{ErrorHandler: apperrors.ErrorHandler()})
	api.SetupRoutes(app, handler)

	return app, ledger, charges
}

func postJSON(t *testing.T, app *fiber.App, path, body, orgID, role string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-ID", orgID)
	req.Header.Set("X-Org-Role", role)

	resp, err := app.Test(req)
	assert.NoError(t, err)

	return resp
}

func TestHandler_Purchase(t *testing.T) {
	body := `{"organization_id":"` + testOrgID + `","package_id":"pkg_100"}`

	t.Run("cross-organization purchase is forbidden", func(t *testing.T) {
		app, ledger, charges := newTestApp()

		ledger.On("Authorize", service.Caller{OrgID: otherOrgID, Role: "member"}, testOrgID).
			Return(service.NewServiceError(constants.ErrCodeForbidden, service.ErrForbidden)).Once()

		resp := postJSON(t, app, "/api/v1/credits/purchase", body, otherOrgID, "member")

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		charges.AssertNotCalled(t, "PublishCharge", mock.Anything, mock.Anything)
		ledger.AssertNotCalled(t, "ResolvePackage", mock.Anything, mock.Anything)
	})

	t.Run("authorized purchase publishes a charge request", func(t *testing.T) {
		app, ledger, charges := newTestApp()

		ledger.On("Authorize", service.Caller{OrgID: testOrgID, Role: "member"}, testOrgID).Return(nil).Once()
		ledger.On("ResolvePackage", mock.Anything, "pkg_100").
			Return(model.CreditPackage{PackageID: "pkg_100", Name: "Starter", Credits: 100, PriceCents: 900, Active: true}, nil).Once()
		charges.On("PublishCharge", mock.Anything, mock.MatchedBy(func(charge publishers.ChargeRequest) bool {
			return charge.OrganizationID == testOrgID && charge.PackageID == "pkg_100" &&
				charge.AmountCents == 900 && charge.PaymentRef != ""
		})).Return(nil).Once()

		resp := postJSON(t, app, "/api/v1/credits/purchase", body, testOrgID, "member")

		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		charges.AssertExpectations(t)
		ledger.AssertExpectations(t)
	})
}
