package models

type Institution struct {
	ID                 string   `bson:"_id,omitempty" json:"institution_id"`
	Name               string   `bson:"name" json:"name"`
	Type               string   `bson:"type" json:"type"`
	Website            string   `bson:"website" json:"website"`
	Address            string   `bson:"address" json:"address"`
	AdminName          string   `bson:"admin_name" json:"admin_name"`
	AdminEmail         string   `bson:"admin_email" json:"admin_email"`
	AdminPhone         string   `bson:"admin_phone" json:"admin_phone"`
	AdminTitle         string   `bson:"admin_title" json:"admin_title"`
	SubscriptionPlan   string   `bson:"subscription_plan" json:"subscription_plan"`
	EmailDomains       []string `bson:"email_domains" json:"email_domains"`
	Licenses           int      `bson:"licenses" json:"licenses"`
	PricePerLicense    float64  `bson:"price_per_license" json:"price_per_license"`
	SessionMinutes     int      `bson:"session_minutes" json:"session_minutes"`
	ExtraMinutesRate   float64  `bson:"extra_minutes_rate" json:"extra_minutes_rate"`
	SignupLink         string   `bson:"signup_link" json:"signup_link"`
	PlatformEngagement string   `bson:"platform_engagement" json:"platform_engagement"`
	TotalUsers         int      `bson:"total_users" json:"total_users"`
	InterviewsDone     int      `bson:"interviews_completed" json:"interviews_completed"`
	AverageSessionTime float64  `bson:"average_session_time" json:"average_session_time"`
	EngagementRate     float64  `bson:"engagement_rate" json:"engagement_rate"`

	Timestamps `bson:",inline"`
}
