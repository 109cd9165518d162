package model

var constructCatalogue = map[string]string{ //nolint:gochecknoglobals // static lookup
	"RT":  "Risk Taking",
	"DA":  "Drive & Ambition",
	"IO":  "Innovation Orientation",
	"DM":  "Decision Making",
	"RG":  "Resilience & Grit",
	"SL":  "Servant Leadership",
	"TB":  "Team Building",
	"EI":  "Emotional Intelligence",
	"A":   "Accountability",
	"PS":  "Problem Solving",
	"CT":  "Critical Thinking",
	"F":   "Failure Response",
	"AD":  "Adaptability",
	"C":   "Conflict Management",
	"N":   "Negotiation",
	"RB":  "Relationship Building",
	"IN":  "Influence",
	"IIN": "Interpersonal Intelligence",
}

// ConstructName returns the catalogue name of a construct code, or the code itself.
func ConstructName(code string) string {
	if n, ok := constructCatalogue[code]; ok {
		return n
	}
	return code
}

// CatalogueCodes lists the built-in construct codes in catalogue order.
func CatalogueCodes() []string {
	return []string{"RT", "DA", "IO", "DM", "RG", "SL", "TB", "EI", "A", "PS", "CT", "F", "AD", "C", "N", "RB", "IN", "IIN"}
}

// catalogueItems is the built-in item bank grouped by construct.
var catalogueItems = []struct { //nolint:gochecknoglobals // static lookup
	construct string
	items     []string
}{
	{"RT", []string{
		"EnergizedByPotential", "ComfortUnchartedT", "Adventurous", "ComfDecUncert", "GoBeyondComfZone",
		"RiskTkgImport", "PtMyselfUncomfrtSituations",
	}},
	{"DA", []string{
		"EagertoPursue", "PursuePerfection", "Pass2Inovate", "ShapeMyPath", "DeterminedReachGls", "AlwaysMorLearn",
		"TackleChallenges", "MoveForward", "Persistent", "DrivenLongTrmSucc",
	}},
	{"IO", []string{
		"CommunIdeas", "AskQuestions", "ImCreative", "InnoExec", "BelieveBestSolProb", "ExamMultiPerspctvs",
		"MultiScenariosConsidProb", "AdaptMsg2Audience",
	}},
	{"DM", []string{
		"ActBeforeThinkg", "StruggleDecs", "KnowEnuf", "ThinkWOActing", "TkTime2UndstndComplxIssues",
		"DecsnsNtGoingExpected", "MakeDecWMissInfo", "IntentnlChoices", "ObjectiveDecisions", "ConsideredBiases",
		"Quick2Act", "ExistFrame4Decisions", "DpAnalGuideDec",
	}},
	{"RG", []string{
		"DiscourageByFailure", "GiveUpChallenging", "SingularFocus", "ObstaclesAsBlocks", "Slow2Adapt",
		"PivotWhenNeeded", "HandleFrustration", "ReflectOnFailure", "ComfortWFailure", "Resistant2ChangeAfterFail",
		"FailureStopTrying", "WorseFailures", "BetterFailurs",
	}},
	{"RB", []string{
		"Listen2Others", "NurtureConnctns", "UsePeopl", "EasilyDistracted", "MovePstSmllTalk",
		"BuildRapportWAnyone", "MaintainRelationships", "RelationshpsRTx", "SeeSomeone",
	}},
	{"SL", []string{
		"FocusNeedsTeam", "Legacy2ElevateOthers", "ValueInputFromAll", "WholeTeamSucc", "TakeResp4Setbacks",
		"PersonalGainsRImportant", "CMyTeamGetRecog", "TakeCreditofMyTeam", "HumbleInContributions",
		"Others2knowWhatIdid",
	}},
	{"TB", []string{
		"ImAGoodListener", "SpeakUp@Mtgs", "TrustEss4Innovation", "ConfidentAbility2Assemble", "StrongTeamPerform",
		"TrustIndWRespons", "ProvGuidance2Teams", "BelieveValRelations", "Adapt2DiffDynamics", "IDindividTalent",
		"OpenComms", "Vulnerable", "TeamsDevBetSoluts", "SafeTeamEnvirons", "Dependable",
	}},
	{"EI", []string{
		"DiscernEmotClues", "DiscEmotTrggrsConflct", "Slf-Reflct2ImprEmotAwrnss", "GoodEmpathizg",
		"AdaptCommNeedsOthers", "RemnCompsdNavDisagr", "Self-Aware", "ArticulateBiases", "AskQs",
		"AnnoyedIfNoIdea",
	}},
	{"A", []string{
		"Procrastinate", "StandbyCommitements", "KeepPromises", "AcknowledgeMistakes", "GoesWrongIsMyFault",
		"AcceptRespons4Err", "ComfortOwnRespnsOutcms", "Cmmttd2Promises", "AcknowledgeRoleInSucFail",
		"ProActCommsDlysObstcls", "NoSomthngUnreal", "MeetDeadlines", "LearnFrmMistakes",
	}},
	{"PS", []string{
		"InternReas2Compl", "Problems2Steps", "RunThruScenarios", "ConsiderAssumptns", "PrepB4Mtg1stTime",
		"KnowNonneg", "Resourceful", "ConseqPotActions",
	}},
	{"CT", []string{
		"ComfortRecFdbkColleag", "IncorpEmrgInfo", "AdaptStances", "Open2Feedback", "Open2DivPerspctvs",
		"ThinkB4Speak",
	}},
	{"C", []string{
		"ComfortwConflict", "ComfortWConstrctvConflict", "DiffBetwnConstr&DestrtvConflct", "AddrssConflctsDirect",
		"ConflctLeadsBetOutcms", "WantConflictGoAway", "SeprtPersnFrmIssue", "ComfortDelvrngSensFdbk",
	}},
	{"AD", []string{
		"ListenB4Spkng", "ImAdaptivePerson", "MntnComposureUndPressure", "InfluencedByOthers", "ImCollaborative",
		"FollowTraditions",
	}},
	{"IIN", []string{
		"ComfortSharIdeasPersSett", "Observant", "Listener", "Reflect", "SocialSitsDrainEnergy",
		"EnergizedMtgNewPeop", "SpeakUpPitchIdeas", "DrvnSocEng", "Conversations", "PreferActiveParticipate",
	}},
	{"N", []string{
		"WillingCompromise",
	}},
}

// catalogueReverse lists the reverse-keyed items of the built-in bank.
var catalogueReverse = []string{ //nolint:gochecknoglobals // static lookup
	"ActBeforeThinkg", "BetterFailurs", "ComfortWFailure", "ComfortwConflict", "ConflctLeadsBetOutcms",
	"Conversations", "DiscourageByFailure", "EasilyDistracted", "FailureStopTrying", "GiveUpChallenging",
	"GoesWrongIsMyFault", "KnowEnuf", "MakeDecWMissInfo", "ObstaclesAsBlocks", "Others2knowWhatIdid",
	"PersonalGainsRImportant", "Procrastinate", "PtMyselfUncomfrtSituations", "PursuePerfection",
	"RelationshpsRTx", "Resistant2ChangeAfterFail", "SocialSitsDrainEnergy", "StruggleDecs",
	"TakeCreditofMyTeam", "ThinkWOActing", "UsePeopl", "Vulnerable", "WantConflictGoAway",
}

// DefaultItemMap returns the built-in item bank with its reverse-keyed items.
// It is used when no item map file is configured.
func DefaultItemMap() *ItemConstructMap {
	mappings := make([]ItemMapping, 0, 160)
	for _, group := range catalogueItems {
		for _, id := range group.items {
			mappings = append(mappings, ItemMapping{ItemID: id, Construct: group.construct})
		}
	}
	return NewItemConstructMap(mappings, WithReverseItems(catalogueReverse...))
}
