package prompts

// Prompt keys, one per LLM-backed step.
const (
	KeyArchCoreSeed    = "architecture.core_seed"
	KeyArchCharacters  = "architecture.character_dynamics"
	KeyArchWorld       = "architecture.world_building"
	KeyArchPlot        = "architecture.plot_architecture"
	KeyArchAssembly    = "architecture.assembly"
	KeyVolumeOutline   = "volumes.outline"
	KeyBlueprintChunk  = "blueprint.chunk"
	KeyChapterSummary  = "chapter.summary"
	KeyCharacterUpdate = "characters.update"
	KeyGlobalSummary   = "finalize.global_summary"
)

// defaultPrompts are the embedded templates. The parsers depend on the
// structural requirements stated in each prompt (section labels, id grammar),
// not on the surrounding phrasing; override files may reword freely as long
// as those survive.
var defaultPrompts = []Prompt{
	{
		Key:         KeyArchCoreSeed,
		Description: "架构第一步：核心种子",
		Text: `你是资深小说策划。基于以下信息提炼本书的核心种子（一句话核心冲突 + 三段扩展）：
主题：{{.Topic}}
类型：{{.Genre}}
计划总章节数：{{.TotalChapters}}
单章目标字数：{{.WordCount}}
{{if .UserGuidance}}作者补充要求：{{.UserGuidance}}{{end}}
只输出核心种子内容，不要输出任何解释。`,
	},
	{
		Key:         KeyArchCharacters,
		Description: "架构第二步：角色动力学",
		Text: `基于已确定的核心种子，设计主要角色及其欲望、恐惧与相互张力：
核心种子：
{{.CoreSeed}}
要求：列出 3-6 名主要角色，每人包含：姓名、定位、核心动机、与其他角色的关系张力。
只输出角色动力学内容。`,
	},
	{
		Key:         KeyArchWorld,
		Description: "架构第三步：世界观",
		Text: `基于核心种子与角色动力学，构建世界观矩阵（地理、势力、规则、资源约束）：
核心种子：
{{.CoreSeed}}
角色动力学：
{{.CharacterDynamics}}
只输出世界观内容。`,
	},
	{
		Key:         KeyArchPlot,
		Description: "架构第四步：三幕情节架构",
		Text: `基于以下素材，给出全书三幕式情节架构（每幕的目标、危机、转折）：
核心种子：
{{.CoreSeed}}
角色动力学：
{{.CharacterDynamics}}
世界观：
{{.WorldBuilding}}
只输出情节架构内容。`,
	},
	{
		Key:         KeyArchAssembly,
		Description: "架构第五步：汇总成文",
		Text: `将以下四部分整合为一份完整的《小说架构》文档，保留全部信息，统一措辞：
一、核心种子：
{{.CoreSeed}}
二、角色动力学：
{{.CharacterDynamics}}
三、世界观：
{{.WorldBuilding}}
四、情节架构：
{{.PlotArchitecture}}
只输出整合后的文档。`,
	},
	{
		Key:         KeyVolumeOutline,
		Description: "分卷大纲生成",
		Text: `你是小说分卷策划。基于小说架构，为第{{.StartVolume}}卷到第{{.EndVolume}}卷编写分卷大纲。
全书共{{.TotalChapters}}章，已有分卷：
{{.ExistingOutline}}
小说架构：
{{.Architecture}}
每卷输出格式（必须严格遵守，章节范围连续且不与已有分卷重叠）：
#=== 第N卷　卷名　第X章 至 第Y章 ===
（本卷主线、冲突升级、卷末钩子）
{{if .UserGuidance}}作者补充要求：{{.UserGuidance}}{{end}}`,
	},
	{
		Key:         KeyBlueprintChunk,
		Description: "章节目录（蓝图）分块生成",
		Text: `你是章节蓝图设计师。为第{{.StartChapter}}章到第{{.EndChapter}}章（第{{.Volume}}卷）生成章节目录。
小说架构：
{{.Architecture}}
本卷大纲：
{{.VolumeOutline}}
最近已有章节目录（接续其后，不得改动已有章节）：
{{.RecentBlueprints}}
未回收伏笔（需要推进或回收的线索）：
{{.UnresolvedForeshadow}}
已占用伏笔编号（新伏笔编号必须大于对应类型的最大值）：
{{.MaxForeshadowIDs}}
当前重要角色：
{{.CharacterIndex}}
{{if .UserGuidance}}作者补充要求：{{.UserGuidance}}{{end}}
每章输出格式（必须严格遵守）：
第N章　章节标题
├─定位：
├─核心作用：
├─叙事视角：
├─场景设定：
├─出场角色与动机：
├─情节脉络：
├─悬念类型：
├─情绪演变：
├─伏笔条目：
│ ID(类型)-标题-动作-内容（第X章前必须回收）
├─颠覆指数：
└─本章简述：
伏笔条目行格式为 编号(类型)-标题-动作-内容，动作取值：埋设/触发/强化/回收/搁置；
编号前缀：MF主线伏笔、AF暗线伏笔、CF人物伏笔、SF支线伏笔、YF一般伏笔。`,
	},
	{
		Key:         KeyChapterSummary,
		Description: "章节定稿：本章摘要",
		Text: `为以下章节正文写 100 字以内的摘要，只输出摘要：
第{{.Chapter}}章正文：
{{.ChapterText}}`,
	},
	{
		Key:         KeyCharacterUpdate,
		Description: "章节定稿：角色状态更新",
		Text: `基于第{{.Chapter}}章正文，输出本章出场角色的状态更新。
现有角色索引：
{{.CharacterIndex}}
章节正文：
{{.ChapterText}}
每名角色输出一个状态块（已有角色沿用其 ID，新角色使用下一个空闲 ID），格式：
ID0001：姓名
基础信息：
- 角色权重：数值
- 别名：别名1、别名2
生命状态：
- 身体：…
- 心理：…
势力特征：
- 所属势力：…
位置轨迹：
- 场景 - 章节：第{{.Chapter}}章 - 状态：…
关键事件记录：
- 第{{.Chapter}}章：[类型] 事件概述
关系网：
- 对象: 关系,关系强度[0-100],互动频率[次数]
多个角色之间用一行 --- 分隔。只输出状态块。`,
	},
	{
		Key:         KeyGlobalSummary,
		Description: "章节定稿：全局摘要滚动更新",
		Text: `将本章摘要并入全局前情摘要，输出更新后的完整摘要（800 字以内）：
现有全局摘要：
{{.GlobalSummary}}
第{{.Chapter}}章摘要：
{{.ChapterSummary}}
只输出更新后的全局摘要。`,
	},
}
