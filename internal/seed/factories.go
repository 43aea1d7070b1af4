package seed

import (
	"math"
	"strings"
	"time"

	"gighub/internal/models"
	"gighub/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	tagPool = []string{
		"go", "react", "vue", "figma", "postgres", "redis", "docker", "kubernetes",
		"flutter", "swift", "kotlin", "selenium", "cypress", "seo", "wordpress", "branding",
	}
	jobTypes     = []string{models.JobTypeDevelopWebsite, models.JobTypeDesign, models.JobTypeTester, models.JobTypeOther}
	workTypes    = []string{models.WorkTypePartTime, models.WorkTypeFullTime}
	workingForms = []string{models.WorkingFormAtOffice, models.WorkingFormRemote}
	payForms     = []string{models.PayFormMonth, models.PayFormHour}
	serviceTypes = []string{
		models.ServiceTypeBuildWebApp, models.ServiceTypeBuildMobileApp, models.ServiceTypeDesignLogo,
		models.ServiceTypeDesignWeb, models.ServiceTypeTestWebApp, models.ServiceTypeTestMobileApp,
		models.ServiceTypeOther,
	}
)

// Profile is a generated identity-provider subject.
type Profile struct {
	ExternalID string
	Input      service.ProfileInput
}

// Factory generates realistic marketplace inputs. A zero seed is random.
type Factory struct {
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewFactory creates a factory. The same non-zero seed yields the same data.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed), now: time.Now}
}

func (f *Factory) Profile() Profile {
	first, last := f.faker.FirstName(), f.faker.LastName()
	externalID := f.faker.UUID()
	email := strings.ToLower(first+"."+last) + "+" + externalID[:8] + "@example.com"
	return Profile{
		ExternalID: externalID,
		Input: service.ProfileInput{
			Email:       email,
			DisplayName: first + " " + last,
			AvatarURL:   "https://picsum.photos/seed/" + externalID + "/200/200",
			Claims:      map[string]any{"customRole": "user"},
		},
	}
}

func (f *Factory) Post() service.CreatePostInput {
	from := math.Round(f.faker.Float64Range(50, 2000))
	expires := f.now().Add(time.Duration(f.faker.Number(7, 60)) * 24 * time.Hour).UTC()

	return service.CreatePostInput{
		Title:       f.faker.JobTitle() + " for " + f.faker.Company(),
		Description: f.faker.Paragraph(2, 4, 12, "\n\n"),
		Location:    f.faker.City(),
		Tags:        f.tags(f.faker.Number(1, 4)),
		BudgetFrom:  from,
		BudgetTo:    from + math.Round(f.faker.Float64Range(0, 3000)),
		ExpiredAt:   &expires,
		JobType:     f.faker.RandomString(jobTypes),
		WorkType:    f.faker.RandomString(workTypes),
		WorkingForm: f.faker.RandomString(workingForms),
		PayForm:     f.faker.RandomString(payForms),
		ServiceType: f.faker.RandomString(serviceTypes),
	}
}

func (f *Factory) Offer() service.OfferInput {
	done := f.now().Add(time.Duration(f.faker.Number(3, 90)) * 24 * time.Hour).UTC()
	return service.OfferInput{
		ProposalSkill:  f.faker.Sentence(12),
		PlanImplement:  f.faker.Paragraph(1, 3, 10, "\n"),
		RecommendCost:  math.Round(f.faker.Float64Range(50, 5000)),
		Phone:          f.faker.Phone(),
		ExpectDateDone: &done,
	}
}

// tags picks n distinct tags from the pool.
func (f *Factory) tags(n int) []string {
	pool := append([]string(nil), tagPool...)
	f.faker.ShuffleStrings(pool)
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}
