package libsvm

// C_SVC : C-support vector classification
var C_SVC = NewSvmType(0, "c_svc", true, false, false)

// NU_SVC : nu-support vector classification
var NU_SVC = NewSvmType(1, "nu_svc", true, false, true)

// ONE_CLASS : distribution estimation (one-class SVM)
var ONE_CLASS = NewSvmType(2, "one_class", false, false, true)

// EPSILON_SVR : epsilon-support vector regression
var EPSILON_SVR = NewSvmType(3, "epsilon_svr", false, true, false)

// NU_SVR : nu-support vector regression
var NU_SVR = NewSvmType(4, "nu_svr", false, true, true)

var svmTypeValues = []*SvmType{
	C_SVC,
	NU_SVC,
	ONE_CLASS,
	EPSILON_SVR,
	NU_SVR,
}

// SvmType describes the formulation solved by Train
type SvmType struct {
	name           string
	id             int
	classification bool
	regression     bool
	nu             bool
}

// NewSvmType returns a new SvmType based on input fields
func NewSvmType(id int, name string, classification bool, regression bool, nu bool) *SvmType {
	return &SvmType{
		id:             id,
		name:           name,
		classification: classification,
		regression:     regression,
		nu:             nu,
	}
}

// SvmTypeValues gives a list of SvmTypes
func SvmTypeValues() []*SvmType {
	return svmTypeValues
}

// GetSvmTypeByID returns the SvmType for the numeric -s option, nil if unknown
func GetSvmTypeByID(id int) *SvmType {
	for _, svmType := range svmTypeValues {
		if svmType.id == id {
			return svmType
		}
	}
	return nil
}

// GetSvmTypeByName returns the SvmType named as in model files, nil if unknown
func GetSvmTypeByName(name string) *SvmType {
	for _, svmType := range svmTypeValues {
		if svmType.name == name {
			return svmType
		}
	}
	return nil
}

// Name is the model file name of the type
func (svmType *SvmType) Name() string {
	return svmType.name
}

// ID is the numeric -s option of the type
func (svmType *SvmType) ID() int {
	return svmType.id
}

// IsClassification is true for C_SVC and NU_SVC
func (svmType *SvmType) IsClassification() bool {
	return svmType.classification
}

// IsRegression is true for EPSILON_SVR and NU_SVR
func (svmType *SvmType) IsRegression() bool {
	return svmType.regression
}

// IsNu is true for the types driven by the nu parameter
func (svmType *SvmType) IsNu() bool {
	return svmType.nu
}

func (svmType *SvmType) String() string {
	return svmType.name
}
