package trigger

import (
	"net/url"
	"strconv"

	"github.com/axioniz/axioniz-api/pkg/httpclient"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"go.uber.org/zap"
)

// BuildURL appends the record id to the trigger URL as the consultation_id
// query parameter, preserving any query the URL already carries.
func BuildURL(triggerURL string, recordID int64) (string, error) {
	u, err := url.Parse(triggerURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("consultation_id", strconv.FormatInt(recordID, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// CallAsync notifies an external automation (CRM, chat webhook) that a
// consultation was created. Failures are logged and never retried.
// The returned channel is closed once the call finished; callers may ignore it.
func CallAsync(triggerURL string, recordID int64, httpClient httpclient.Client) <-chan struct{} {
	done := make(chan struct{})
	if triggerURL == "" {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		targetURL, err := BuildURL(triggerURL, recordID)
		if err != nil {
			logger.Error("Invalid trigger URL", zap.Error(err), zap.Int64("consultation_id", recordID))
			return
		}

		resp, err := httpClient.Get(targetURL)
		if err != nil {
			logger.Error("Failed to call trigger URL",
				zap.Error(err),
				zap.String("url", targetURL),
				zap.Int64("consultation_id", recordID))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("Trigger URL called successfully",
				zap.String("url", targetURL),
				zap.Int64("consultation_id", recordID),
				zap.Int("status_code", resp.StatusCode))
		} else {
			logger.Warn("Trigger URL returned non-success status",
				zap.String("url", targetURL),
				zap.Int64("consultation_id", recordID),
				zap.Int("status_code", resp.StatusCode))
		}
	}()

	return done
}
