// Package seed fills an empty database with demo listings so the API
// is browsable immediately after a local start.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	jobdomain "github.com/smallbiznis/hirewire/internal/job/domain"
)

const demoOrgID = "org_demo"

type demoJob struct {
	title        string
	company      string
	location     string
	jobType      jobdomain.JobType
	salaryMin    int64
	salaryMax    int64
	featured     bool
	description  string
	requirements []string
}

var demoJobs = []demoJob{
	{
		title:        "Senior Backend Engineer",
		company:      "Northwind Labs",
		location:     "Remote",
		jobType:      jobdomain.TypeRemote,
		salaryMin:    140000,
		salaryMax:    180000,
		featured:     true,
		description:  "Build and operate the services behind our marketplace platform.",
		requirements: []string{"5+ years building production services", "Strong SQL and data modeling", "Experience running systems on Kubernetes"},
	},
	{
		title:        "Product Designer",
		company:      "Brightline",
		location:     "New York, NY",
		jobType:      jobdomain.TypeFullTime,
		salaryMin:    110000,
		salaryMax:    140000,
		featured:     true,
		description:  "Own the end-to-end design of our hiring workflows.",
		requirements: []string{"Portfolio of shipped product work", "Comfort working directly with engineers"},
	},
	{
		title:        "Data Analyst (Contract)",
		company:      "Harbor Analytics",
		location:     "Austin, TX",
		jobType:      jobdomain.TypeContract,
		salaryMin:    60,
		salaryMax:    85,
		featured:     false,
		description:  "Six month engagement building reporting for our customer success team.",
		requirements: []string{"Advanced SQL", "Dashboarding experience"},
	},
	{
		title:        "Engineering Intern",
		company:      "Northwind Labs",
		location:     "Seattle, WA",
		jobType:      jobdomain.TypeInternship,
		featured:     false,
		description:  "Summer internship on the platform team.",
		requirements: []string{"CS coursework or equivalent", "Some Go or Python"},
	},
}

// EnsureDemoJobs inserts the demo listings once. An already-populated
// jobs table is left untouched.
func EnsureDemoJobs(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).Model(&jobdomain.Job{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, d := range demoJobs {
			id := node.Generate()
			job := jobdomain.Job{
				ID:           id,
				OrgID:        demoOrgID,
				Title:        d.title,
				Slug:         fmt.Sprintf("%s-%s", slug.Make(d.title), strings.ToLower(id.Base36())),
				Company:      d.company,
				Location:     d.location,
				Type:         d.jobType,
				Description:  d.description,
				Requirements: d.requirements,
				Featured:     d.featured,
				Status:       jobdomain.StatusActive,
				PostedBy:     "user_demo",
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if d.salaryMin > 0 {
				min := d.salaryMin
				job.SalaryMin = &min
			}
			if d.salaryMax > 0 {
				max := d.salaryMax
				job.SalaryMax = &max
			}
			if err := tx.WithContext(ctx).Create(&job).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
