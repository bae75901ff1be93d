package get_company_bookings

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров.
// date задаёт один день; from/to задают период и имеют приоритет над date.
func ToServiceRequest(companyID, userID int64, q url.Values) (*models.GetCompanyBookingsRequest, error) {
	req := &models.GetCompanyBookingsRequest{
		UserID:    userID,
		CompanyID: companyID,
	}

	if v := q.Get("staffId"); v != "" {
		staffID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid staffId: %w", err)
		}
		req.StaffID = &staffID
	}

	if v := q.Get("status"); v != "" {
		req.Status = &v
	}

	if v := q.Get("date"); v != "" {
		date, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		req.StartDate = &date
		req.EndDate = &date
	}

	for name, dst := range map[string]**time.Time{"from": &req.StartDate, "to": &req.EndDate} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		date, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = &date
	}

	if v := q.Get("includeInactive"); v != "" {
		includeInactive, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
