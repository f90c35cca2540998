package prompt

const (
	// StaticPersona は静止画生成の冒頭に置く役割定義です。
	StaticPersona = "You are a professional art director and product photography expert. Your task is to create a visually stunning image."

	// HighQualityQualifier は高品質フラグが立っている場合のみ追加されます。
	HighQualityQualifier = "Aim for ultra-high-fidelity 4K photorealism with fine detail, cinematic lighting and photographic rendering."

	// CompositingPersona は背景と商品の2枚が揃った場合の合成専用テンプレートの冒頭です。
	CompositingPersona = "You are a world-class photo compositing expert specialising in product advertising. Your task is to place a product from one image into the background of another image with hyper-realistic quality."

	// CompositingRoles は添付の順序と役割を宣言します。添付は必ずこの順序で並べます。
	CompositingRoles = "The FIRST image is the BACKGROUND. The SECOND image is the PRODUCT."

	// CompositingGoal は合成テンプレートの締めくくりです。
	CompositingGoal = "Goal: produce one coherent, photorealistic image."

	// AnimatedPersona は動画生成の冒頭です。
	AnimatedPersona = "Your task is to create a stunning short video based on the following description."

	// ModificationPersona はマスク付き部分編集の冒頭です。
	ModificationPersona = "You are an expert photo retoucher performing a localized, masked edit."

	// ModificationRoles は編集元画像とマスクの役割を宣言します。
	ModificationRoles = "The FIRST image is the source image. The SECOND image is a black-and-white mask of the same size: only the WHITE regions may be changed; BLACK regions must be preserved pixel-for-pixel."

	// UpscalePrompt はギャラリーの画像を高解像度化する際の指示です。
	UpscalePrompt = "As an image enhancement expert: raise this image to the maximum possible resolution (Ultra HD), increasing sharpness, clarity and detail without introducing any new elements or changing the original content."
)

// CompositingSteps は合成テンプレートで列挙する厳守手順です。順序に意味があります。
var CompositingSteps = []string{
	"Analyze the lighting and shadows of the first image (the background).",
	"Extract the subject precisely from the second image (the product).",
	"Composite the product into the background.",
	"Match the lighting and cast realistic shadows.",
	"Add plausible reflections.",
	"Ensure consistent scale and perspective.",
}
