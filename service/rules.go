package service

import "github.com/Khalil2008k/guild-contracts/model"

// PlatformRuleSet is the platform's canonical, versioned terms. Every contract
// receives a snapshot of it at creation time; editing the master list never
// changes contracts that already exist.
type PlatformRuleSet struct {
	Version string
	Rules   []model.BilingualText
}

// DefaultPlatformRules returns the current canonical rule set.
func DefaultPlatformRules() *PlatformRuleSet {
	return &PlatformRuleSet{
		Version: "1.2",
		Rules: []model.BilingualText{
			{
				En: "All payments must be made through the Guild platform. Off-platform payment arrangements void this contract.",
				Ar: "يجب أن تتم جميع المدفوعات عبر منصة جيلد. أي ترتيبات دفع خارج المنصة تُبطل هذا العقد.",
			},
			{
				En: "Both parties agree to communicate through the platform's messaging system for all contract-related matters.",
				Ar: "يوافق الطرفان على التواصل عبر نظام الرسائل الخاص بالمنصة في جميع الأمور المتعلقة بالعقد.",
			},
			{
				En: "The doer must deliver the agreed work within the contract timeline unless an extension is agreed by both parties.",
				Ar: "يجب على المنفذ تسليم العمل المتفق عليه ضمن الجدول الزمني للعقد ما لم يتفق الطرفان على تمديد.",
			},
			{
				En: "Disputes are handled by the Guild support team. Either party may raise a dispute at any time.",
				Ar: "تتولى فرق الدعم في جيلد معالجة النزاعات. يحق لأي من الطرفين رفع نزاع في أي وقت.",
			},
			{
				En: "Confidential information shared during the contract must not be disclosed to third parties.",
				Ar: "لا يجوز الإفصاح عن المعلومات السرية المتبادلة أثناء العقد لأي طرف ثالث.",
			},
			{
				En: "This contract becomes binding once both parties have signed.",
				Ar: "يصبح هذا العقد ملزماً بمجرد توقيع الطرفين.",
			},
		},
	}
}

// Snapshot returns a copy of the rules for embedding into a new contract.
func (s *PlatformRuleSet) Snapshot() []model.BilingualText {
	return append([]model.BilingualText(nil), s.Rules...)
}
