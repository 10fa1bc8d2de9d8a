// Package registry builds collectors from account configuration.
package registry

import (
	"context"
	"fmt"

	"github.com/jimmwu/stratus/config"
	"github.com/jimmwu/stratus/providers"
	"github.com/jimmwu/stratus/providers/aliyun"
	"github.com/jimmwu/stratus/providers/aws"
	"github.com/jimmwu/stratus/providers/cloudflare"
)

// ForAccount returns the collector for one configured account.
func ForAccount(ctx context.Context, acct config.Account) (providers.Collector, error) {
	switch acct.Provider {
	case "aws":
		return aws.New(ctx, aws.Options{
			AccountID: acct.AccountID,
			Region:    acct.Region(),
			Profile:   acct.Profile,
			Tags:      acct.Tags,
		})
	case "cloudflare":
		return cloudflare.New(cloudflare.Options{
			AccountID: acct.AccountID,
			APIToken:  acct.APIToken,
			Tags:      acct.Tags,
		})
	case "aliyun":
		return aliyun.New(aliyun.Options{
			AccountID:       acct.AccountID,
			Region:          acct.Region(),
			AccessKeyID:     acct.AccessKeyID,
			AccessKeySecret: acct.AccessSecret,
			Tags:            acct.Tags,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", acct.Provider)
	}
}
