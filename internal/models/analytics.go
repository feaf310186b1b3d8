package models

// ResumeAnalytics and InterviewAnalytics are produced by the analytics
// pipeline of another project; this service only reads them.
type ResumeAnalytics struct {
	StudentID        string            `bson:"student_id" json:"student_id"`
	StudentName      string            `bson:"student_name" json:"student_name"`
	DepartmentID     string            `bson:"department_id,omitempty" json:"department_id,omitempty"`
	ResumeViews      int               `bson:"resume_views" json:"resume_views"`
	TimeOnSections   map[string]string `bson:"time_on_sections" json:"time_on_sections"`
	ContactClicks    int               `bson:"contact_clicks" json:"contact_clicks"`
	Downloads        int               `bson:"downloads" json:"downloads"`
	ImprovementScore float64           `bson:"improvement_score" json:"improvement_score"`
	AIUsage          int               `bson:"ai_usage" json:"ai_usage"`
	ResumesGenerated int               `bson:"resumes_generated" json:"resumes_generated"`
	JobMatches       int               `bson:"job_matches" json:"job_matches"`
	JobClickRate     string            `bson:"job_click_rate" json:"job_click_rate"`
}

type InterviewAnalytics struct {
	StudentID             string             `bson:"student_id" json:"student_id"`
	StudentName           string             `bson:"student_name" json:"student_name"`
	DepartmentID          string             `bson:"department_id,omitempty" json:"department_id,omitempty"`
	ResponseQuality       float64            `bson:"response_quality" json:"response_quality"`
	CommonMistakes        []string           `bson:"common_mistakes" json:"common_mistakes"`
	AvgResponseTime       string             `bson:"avg_response_time" json:"avg_response_time"`
	Sentiment             string             `bson:"sentiment" json:"sentiment"`
	KeywordUsage          string             `bson:"keyword_usage" json:"keyword_usage"`
	PracticeAttempts      int                `bson:"practice_attempts" json:"practice_attempts"`
	TopicPerformance      map[string]float64 `bson:"topic_performance" json:"topic_performance"`
	FeedbackEngagement    string             `bson:"feedback_engagement" json:"feedback_engagement"`
	ImprovementTrajectory string             `bson:"improvement_trajectory" json:"improvement_trajectory"`
	BenchmarkPercentile   string             `bson:"benchmark_percentile" json:"benchmark_percentile"`
	DifficultyTolerance   string             `bson:"difficulty_tolerance" json:"difficulty_tolerance"`
	ConfidenceLevel       string             `bson:"confidence_level" json:"confidence_level"`
	ImprovementScore      float64            `bson:"improvement_score" json:"improvement_score"`
	DropOffRate           string             `bson:"drop_off_rate" json:"drop_off_rate"`
}

// InstitutionPerformance is the admin roll-up computed from interview results.
type InstitutionPerformance struct {
	InstitutionID       string  `json:"institution_id"`
	Name                string  `json:"name"`
	Students            int     `json:"students"`
	ActiveStudents      int     `json:"active_students"`
	InterviewsCompleted int     `json:"interviews_completed"`
	AverageScore        float64 `json:"average_score"`
	LicenseUtilization  float64 `json:"license_utilization"`
}
