package topics

import (
	"context"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
)

// baselineMappings is the starter set of medical topic relationships loaded
// by the seed command.
var baselineMappings = []content.TopicMapping{
	// Cardiovascular system
	{Topic: "cardiac cycle", ParentTopic: "cardiovascular physiology", Specialty: "cardiology",
		Description: "The sequence of events during a single heartbeat"},
	{Topic: "heart valves", ParentTopic: "cardiac anatomy", Specialty: "cardiology",
		Description: "Structures that control blood flow through the heart"},
	{Topic: "cardiac output", ParentTopic: "cardiovascular physiology", Specialty: "cardiology",
		Description: "Volume of blood pumped by the heart per minute"},
	{Topic: "ECG", ParentTopic: "cardiovascular diagnostics", Specialty: "cardiology",
		Description: "Electrocardiogram for recording heart electrical activity"},
	{Topic: "heart sounds", ParentTopic: "cardiac auscultation", Specialty: "cardiology",
		Description: "Sounds produced by the heart during the cardiac cycle"},

	// Respiratory system
	{Topic: "pulmonary ventilation", ParentTopic: "respiratory physiology", Specialty: "pulmonology",
		Description: "Movement of air into and out of the lungs"},
	{Topic: "gas exchange", ParentTopic: "respiratory physiology", Specialty: "pulmonology",
		Description: "Transfer of oxygen and carbon dioxide between lungs and blood"},
	{Topic: "pneumothorax", ParentTopic: "respiratory pathology", Specialty: "pulmonology",
		Description: "Presence of air in the pleural cavity"},
	{Topic: "respiratory muscles", ParentTopic: "respiratory anatomy", Specialty: "pulmonology",
		Description: "Muscles involved in breathing"},

	// Musculoskeletal system
	{Topic: "forearm muscles", ParentTopic: "upper limb anatomy", Specialty: "orthopedics",
		Description: "Muscles located in the forearm"},
	{Topic: "forearm nerves", ParentTopic: "upper limb innervation", Specialty: "neurology",
		Description: "Nerves supplying the forearm"},
	{Topic: "forearm arteries", ParentTopic: "upper limb vasculature", Specialty: "vascular",
		Description: "Arteries supplying the forearm"},
	{Topic: "upper limb innervation", ParentTopic: "peripheral nervous system", Specialty: "neurology",
		Description: "Nerve supply to the upper limb"},
	{Topic: "muscle contraction", ParentTopic: "muscle physiology", Specialty: "physiology",
		Description: "Process by which muscles generate force"},

	// Nervous system
	{Topic: "brain anatomy", ParentTopic: "neuroanatomy", Specialty: "neurology",
		Description: "Structural organization of the brain"},
	{Topic: "spinal cord", ParentTopic: "neuroanatomy", Specialty: "neurology",
		Description: "Part of the central nervous system within the vertebral column"},
	{Topic: "cranial nerves", ParentTopic: "peripheral nervous system", Specialty: "neurology",
		Description: "Twelve pairs of nerves emerging directly from the brain"},

	// Broader categories
	{Topic: "cardiovascular physiology", ParentTopic: "physiology", Specialty: "cardiology",
		Description: "Study of heart and blood vessel function"},
	{Topic: "respiratory physiology", ParentTopic: "physiology", Specialty: "pulmonology",
		Description: "Study of respiratory system function"},
	{Topic: "neuroanatomy", ParentTopic: "anatomy", Specialty: "neurology",
		Description: "Study of nervous system structure"},
	{Topic: "upper limb anatomy", ParentTopic: "anatomy", Specialty: "orthopedics",
		Description: "Study of upper limb structure"},
}

// Seed loads the baseline topic relationships into repo. Returns the number
// of mappings written.
func Seed(ctx context.Context, repo Repository) (int, error) {
	for i, m := range baselineMappings {
		if err := repo.Add(ctx, m); err != nil {
			return i, err
		}
	}
	return len(baselineMappings), nil
}
